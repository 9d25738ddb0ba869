package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/cobra"

	"github.com/gogpu/mslc"
	"github.com/gogpu/mslc/internal/build"
	"github.com/gogpu/mslc/internal/config"
	"github.com/gogpu/mslc/ir"
	"github.com/gogpu/mslc/msl"
)

func (a *app) showCmd() *cobra.Command {
	var (
		target string
		stage  string
		color  bool
		style  string
	)
	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print the GLSL or HLSL assembled from a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			kind, err := stageOf(name, stage)
			if err != nil {
				return err
			}
			source, err := os.ReadFile(name)
			if err != nil {
				return err
			}

			res, err := mslc.NewCompiler(a.cfg.Compiler(a.log)).Compile(string(source), kind)
			if err != nil {
				return fmt.Errorf("%s: %s", name, msl.FormatWithContext(err, string(source)))
			}

			var out string
			switch target {
			case config.TargetGLSL:
				opts, err := a.cfg.GLSL()
				if err != nil {
					return err
				}
				out, err = res.GLSL(opts)
				if err != nil {
					return err
				}
			case config.TargetHLSL:
				opts, err := a.cfg.HLSL()
				if err != nil {
					return err
				}
				out, err = res.HLSL(opts)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown target %q, want glsl or hlsl", target)
			}

			if !color {
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			return highlight(cmd.OutOrStdout(), out, target, style)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&target, "target", "t", config.TargetGLSL, "output language: glsl or hlsl")
	f.StringVar(&stage, "stage", "", "shader stage: vertex or pixel (default: from file name)")
	f.BoolVar(&color, "color", false, "syntax-highlight the output")
	f.StringVar(&style, "style", "monokai", "highlight style")
	return cmd
}

func stageOf(name, stage string) (ir.ShaderKind, error) {
	if stage != "" {
		return ir.ParseShaderKind(stage)
	}
	return build.InferKind(name)
}

// highlight writes source with terminal colors.
func highlight(w io.Writer, source, language, style string) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	st := styles.Get(style)
	if st == nil {
		st = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return err
	}
	return formatter.Format(w, st, iterator)
}
