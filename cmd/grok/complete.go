package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/metalagman/grok/internal/grok"
	"github.com/metalagman/grok/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type completeOptions struct {
	markdown bool
	style    string
	raw      bool
	format   string
	stdin    bool
}

func (o *completeOptions) bindFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.markdown, "render", false, "render the answer as markdown")
	fs.StringVar(&o.style, "style", "", "markdown style (dark, light, notty, ...); detected from the terminal when empty")
	fs.BoolVar(&o.raw, "raw", false, "print the whole response body instead of the answer")
	fs.StringVar(&o.format, "format", render.FormatJSON, "raw output format: json or yaml")
}

func newCompleteCmd(st *cliState, opts *completeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete [prompt...]",
		Short: "Send a prompt and print the answer",
		Example: `  grok complete "Explain goroutines in one paragraph"
  echo "Summarize RFC 2616" | grok complete --stdin --render`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if opts.stdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt from stdin: %w", err)
				}
				prompt = string(data)
			}
			if strings.TrimSpace(prompt) == "" {
				return errors.New("prompt is required: pass it as arguments or use --stdin")
			}
			return runComplete(cmd, st, opts, prompt)
		},
	}
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "read the prompt from standard input")
	return cmd
}

func runComplete(cmd *cobra.Command, st *cliState, opts *completeOptions, prompt string) error {
	client, err := grok.NewClient(st.cfg.ClientConfig(), grok.WithLogger(st.logger))
	if err != nil {
		st.logger.Error().Err(err).Msg("failed to create grok client")
		return err
	}

	resp, err := client.Complete(cmd.Context(), prompt)
	if err != nil {
		st.logger.Error().Err(err).Msg("failed to process request")
		return err
	}

	out := cmd.OutOrStdout()
	if opts.raw {
		return render.Raw(out, resp.Body(), opts.format)
	}

	content, ok := resp.Content()
	if !ok {
		return render.NoContent(out)
	}
	return render.Answer(out, content, render.Options{
		Markdown: opts.markdown,
		Style:    opts.style,
	})
}
