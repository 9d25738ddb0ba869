// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "testing"

func TestRegisterType_String(t *testing.T) {
	tests := []struct {
		rt   RegisterType
		want string
	}{
		{RegisterTypeB, "b"},
		{RegisterTypeT, "t"},
		{RegisterTypeS, "s"},
		{RegisterType(9), "b"},
	}

	for _, tt := range tests {
		if got := tt.rt.String(); got != tt.want {
			t.Errorf("RegisterType(%d).String() = %q, want %q", tt.rt, got, tt.want)
		}
	}
}

func TestBindTarget_Annotation(t *testing.T) {
	tests := []struct {
		name string
		bt   BindTarget
		rt   RegisterType
		sm   ShaderModel
		want string
	}{
		{"sm5.0 ignores space", BindTarget{Space: 3, Register: 1}, RegisterTypeB, ShaderModel5_0, "register(b1)"},
		{"sm5.1 texture", BindTarget{Register: 4}, RegisterTypeT, ShaderModel5_1, "register(t4, space0)"},
		{"sm6.0 sampler", BindTarget{Space: 2, Register: 0}, RegisterTypeS, ShaderModel6_0, "register(s0, space2)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bt.Annotation(tt.rt, tt.sm); got != tt.want {
				t.Errorf("Annotation() = %q, want %q", got, tt.want)
			}
		})
	}
}
