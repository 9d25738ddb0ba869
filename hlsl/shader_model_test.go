// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"testing"

	"github.com/gogpu/mslc/ir"
)

func TestShaderModel_String(t *testing.T) {
	tests := []struct {
		sm   ShaderModel
		want string
	}{
		{ShaderModel5_0, "SM 5.0"},
		{ShaderModel5_1, "SM 5.1"},
		{ShaderModel6_0, "SM 6.0"},
		{ShaderModel6_3, "SM 6.3"},
		{ShaderModel6_6, "SM 6.6"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.sm.String()
			if got != tt.want {
				t.Errorf("ShaderModel.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShaderModel_Version(t *testing.T) {
	tests := []struct {
		name      string
		sm        ShaderModel
		wantMajor uint8
		wantMinor uint8
	}{
		{"SM 5.0", ShaderModel5_0, 5, 0},
		{"SM 5.1", ShaderModel5_1, 5, 1},
		{"SM 6.0", ShaderModel6_0, 6, 0},
		{"SM 6.4", ShaderModel6_4, 6, 4},
		{"unknown", ShaderModel(99), 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sm.Major(); got != tt.wantMajor {
				t.Errorf("Major() = %d, want %d", got, tt.wantMajor)
			}
			if got := tt.sm.Minor(); got != tt.wantMinor {
				t.Errorf("Minor() = %d, want %d", got, tt.wantMinor)
			}
		})
	}
}

func TestShaderModel_Profile(t *testing.T) {
	tests := []struct {
		sm   ShaderModel
		kind ir.ShaderKind
		want string
	}{
		{ShaderModel5_0, ir.KindVertex, "vs_5_0"},
		{ShaderModel5_1, ir.KindPixel, "ps_5_1"},
		{ShaderModel6_2, ir.KindPixel, "ps_6_2"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.sm.Profile(tt.kind); got != tt.want {
				t.Errorf("Profile(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestShaderModel_Features(t *testing.T) {
	tests := []struct {
		sm     ShaderModel
		spaces bool
		dxil   bool
	}{
		{ShaderModel5_0, false, false},
		{ShaderModel5_1, true, false},
		{ShaderModel6_0, true, true},
		{ShaderModel6_6, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.sm.String(), func(t *testing.T) {
			if got := tt.sm.SupportsRegisterSpaces(); got != tt.spaces {
				t.Errorf("SupportsRegisterSpaces() = %v, want %v", got, tt.spaces)
			}
			if got := tt.sm.SupportsDXIL(); got != tt.dxil {
				t.Errorf("SupportsDXIL() = %v, want %v", got, tt.dxil)
			}
		})
	}
}

func TestParseShaderModel(t *testing.T) {
	tests := []struct {
		in      string
		want    ShaderModel
		wantErr bool
	}{
		{in: "5.0", want: ShaderModel5_0},
		{in: "5_1", want: ShaderModel5_1},
		{in: "sm6.0", want: ShaderModel6_0},
		{in: "SM 6.2", want: ShaderModel6_2},
		{in: "4.0", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShaderModel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseShaderModel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseShaderModel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
