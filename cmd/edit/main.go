package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"photostudio/internal/acquisition"
	"photostudio/internal/domain"
	"photostudio/internal/editing"
	"photostudio/internal/infra"
	"photostudio/internal/providers/gemini"
	"photostudio/internal/session"
)

type promptList []string

func (p *promptList) String() string { return strings.Join(*p, "; ") }

func (p *promptList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		inFlag      string
		outFlag     string
		presetFlag  string
		backendFlag string
		prompts     promptList
	)
	flag.StringVar(&inFlag, "in", "", "Path of the image to edit")
	flag.StringVar(&outFlag, "out", "", "Where to write the edited image (defaults to ai-edited-photo.<ext>)")
	flag.Var(&prompts, "prompt", "Edit instruction; repeat to run several edits in order")
	flag.StringVar(&presetFlag, "preset", "", "Preset id to apply before any -prompt edits")
	flag.StringVar(&backendFlag, "backend", cfg.GeminiBackend, "Gemini backend: rest, sdk or synthetic")
	flag.Parse()

	if strings.TrimSpace(inFlag) == "" {
		fmt.Fprintln(os.Stderr, "-in is required")
		os.Exit(2)
	}
	if presetFlag == "" && len(prompts) == 0 {
		fmt.Fprintln(os.Stderr, "at least one -prompt or a -preset is required")
		os.Exit(2)
	}

	logger := infra.NewLogger(cfg.AppEnv)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service, err := gemini.New(ctx, strings.ToLower(strings.TrimSpace(backendFlag)), gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: &http.Client{Timeout: cfg.GeminiTimeout},
		Logger:     &logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	gateway := editing.NewGateway(service, editing.Options{
		Limiter: editing.LimiterPerMinute(cfg.GeminiRatePerMin),
		Logger:  &logger,
	})
	ctrl := session.NewController(gateway, session.WithLogger(&logger))

	img, err := acquisition.FromFile(inFlag, cfg.MaxUploadBytes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := ctrl.SelectImage(img); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if presetFlag != "" {
		if err := run(ctx, func() (<-chan struct{}, error) { return ctrl.ApplyPreset(ctx, presetFlag) }, ctrl); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	for _, prompt := range prompts {
		if err := run(ctx, func() (<-chan struct{}, error) { return ctrl.RequestEdit(ctx, prompt) }, ctrl); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	current, ok := ctrl.CurrentImage()
	if !ok {
		fmt.Fprintln(os.Stderr, "no image to write")
		os.Exit(1)
	}
	out := outFlag
	if out == "" {
		out = "ai-edited-photo" + domain.Extension(current.MIMEType)
	}
	if err := os.WriteFile(out, current.Data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	_, index := ctrl.History()
	fmt.Printf("wrote %s (%s, %d bytes, %d edits)\n", out, current.MIMEType, len(current.Data), index+1)
}

// run submits one edit and waits for it to resolve, turning an error status
// into an error.
func run(ctx context.Context, submit func() (<-chan struct{}, error), ctrl *session.Controller) error {
	done, err := submit()
	if err != nil {
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if status := ctrl.Status(); status.Kind == session.StatusError {
		return fmt.Errorf("edit failed: %s", status.Message)
	}
	return nil
}
