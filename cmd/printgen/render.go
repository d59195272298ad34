// cmd/printgen/render.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"printgen/internal/job"
	"printgen/internal/utils"
	"printgen/pkg/escpos"
	"printgen/pkg/swrender"
	"printgen/pkg/textenc"
)

func newRenderCommand() *cobra.Command {
	var (
		output string
		noInit bool
	)

	cmd := &cobra.Command{
		Use:   "render <job.yaml>",
		Short: "Render a job document to a command stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication()
			if err != nil {
				return err
			}
			defer app.Close()
			return runRender(app, args[0], output, noInit)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().BoolVar(&noInit, "no-init", false, "skip the initialize command at stream start")
	return cmd
}

func runRender(app *Application, jobPath, output string, noInit bool) error {
	doc, err := job.LoadDocument(jobPath)
	if err != nil {
		return err
	}

	prof, err := app.loadProfile(doc.Profile)
	if err != nil {
		return err
	}

	var encOpts []textenc.Option
	if enc := app.config.Profile.Encoding; enc != "" {
		encOpts = append(encOpts, textenc.WithEncoding(enc))
	}
	if sym := app.config.Profile.DefaultSymbol; sym != "" {
		encOpts = append(encOpts, textenc.WithDefaultSymbol([]rune(sym)[0]))
	}

	sink := &escpos.Buffer{}
	printer, err := escpos.NewPrinter(sink, prof, encOpts,
		escpos.WithLogger(app.logger),
		escpos.WithShapeRenderer(swrender.New()),
	)
	if err != nil {
		return err
	}

	jobLogger := utils.NewJobLogger(app.logger, printer.JobID(), prof.Name)
	jobLogger.Start(zap.String("document", jobPath))

	if !noInit {
		if err := printer.Init(); err != nil {
			jobLogger.Error(err)
			return err
		}
	}

	runner := job.NewRunner(&app.config.Render, jobLogger.Logger())
	if err := runner.Run(doc, printer); err != nil {
		jobLogger.Error(err)
		return err
	}

	if err := writeOutput(output, sink.Bytes()); err != nil {
		jobLogger.Error(err)
		return err
	}
	jobLogger.Success(sink.Len())
	return nil
}

func writeOutput(output string, data []byte) error {
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
