package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"trip_itinerary_planner/config"
	"trip_itinerary_planner/generator"
	"trip_itinerary_planner/planner"
	"trip_itinerary_planner/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json")
	inputPath := flag.String("input", "", "path to a trip request JSON (CLI mode)")
	outputPath := flag.String("output", "", "write the generated itinerary JSON here instead of stdout")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	mock := flag.Bool("mock", false, "use the offline mock model instead of the configured provider")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	llm, err := buildLLM(cfg, *mock)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	agent, err := generator.NewAgent(llm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Web server mode
	if *serve {
		srv, err := server.New(agent, cfg, !*mock)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = ":8080"
		}
		log.Printf("Starting web server on %s", listen)
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// CLI one-shot mode
	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "--input is required (or use --serve)")
		os.Exit(1)
	}
	if err := runOnce(agent, *inputPath, *outputPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runOnce generates a complete itinerary from a request file: outline first,
// then every per-item fill, and prints the result as JSON.
func runOnce(agent *generator.Agent, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	var req generator.OutlineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse %s: %w", inputPath, err)
	}

	ctx := context.Background()
	log.Printf("[cli] generating outline depart=%s days=%d", req.Depart.Label(), req.TripDays)
	outline, err := agent.Outline(ctx, req)
	if err != nil {
		return err
	}

	orch := planner.New(agent, outline, planner.HintsFromRequest(req))
	orch.Run(ctx)
	for _, warning := range orch.Warnings() {
		log.Printf("[cli] %s", warning)
	}

	out, err := json.MarshalIndent(orch.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	if outputPath != "" {
		return os.WriteFile(outputPath, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

func buildLLM(cfg config.Config, mock bool) (generator.LLMClient, error) {
	if mock {
		return generator.MockLLM{}, nil
	}
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("llm config missing; please set llm.provider/model/api_key in config")
	}
	switch cfg.LLM.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	case "openai-compatible":
		// Any OpenAI-compatible gateway works, but it needs an explicit endpoint.
		if cfg.LLM.BaseURL == "" {
			return nil, fmt.Errorf("llm provider openai-compatible requires base_url")
		}
		return generator.NewOpenAILLMFromConfig(&generator.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
		})
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.LLM.Provider)
	}
}
