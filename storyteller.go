package main

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const storytellerSystemPrompt = `You are a dramatic storyteller for a medieval werewolf game. When players are killed, you tell a short atmospheric story about their fate. Keep it to 2-3 sentences. Be gothic and dramatic, fitting for a village plagued by werewolves.`

// Storyteller generates a dramatic story after deaths in the game.
// onChunk is called with each text chunk as it streams in.
type Storyteller interface {
	Tell(ctx context.Context, history []string, onChunk func(string)) (string, error)
}

// globalStoryteller is nil when no provider is configured (feature disabled).
var globalStoryteller Storyteller

type llmStoryteller struct {
	llm      llms.Model
	callOpts []llms.CallOption
}

func (s *llmStoryteller) Tell(ctx context.Context, history []string, onChunk func(string)) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, storytellerSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman,
			"Game history so far:\n"+strings.Join(history, "\n")+
				"\n\nTell a short dramatic story (2-3 sentences) about what just happened to the victim."),
	}

	var fullText strings.Builder
	opts := append(s.callOpts, llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		text := string(chunk)
		fullText.WriteString(text)
		if onChunk != nil {
			onChunk(text)
		}
		return nil
	}))

	_, err := s.llm.GenerateContent(ctx, messages, opts...)
	return strings.TrimSpace(fullText.String()), err
}

// buildCallOpts builds LLM call options from the config.
func buildCallOpts(cfg AppConfig) []llms.CallOption {
	var opts []llms.CallOption

	if cfg.StorytellerTemperature != "" {
		if f, err := strconv.ParseFloat(cfg.StorytellerTemperature, 64); err == nil {
			opts = append(opts, llms.WithTemperature(f))
			log.Printf("Storyteller: temperature=%.2f", f)
		} else {
			log.Printf("Storyteller: invalid temperature %q: %v", cfg.StorytellerTemperature, err)
		}
	}

	if cfg.StorytellerThinking != "" {
		mode := llms.ThinkingMode(cfg.StorytellerThinking)
		switch mode {
		case llms.ThinkingModeNone, llms.ThinkingModeLow, llms.ThinkingModeMedium, llms.ThinkingModeHigh, llms.ThinkingModeAuto:
			opts = append(opts, llms.WithThinkingMode(mode))
			log.Printf("Storyteller: thinking=%s", mode)
		default:
			log.Printf("Storyteller: invalid thinking %q (valid: none, low, medium, high, auto)", cfg.StorytellerThinking)
		}
	}

	return opts
}

// newStorytellerLLM builds the provider client for the configured backend.
func newStorytellerLLM(cfg AppConfig) (llms.Model, string, error) {
	model := cfg.StorytellerModel
	switch cfg.StorytellerProvider {
	case "ollama":
		llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(cfg.StorytellerOllamaURL))
		return llm, fmt.Sprintf("Ollama model=%s url=%s", model, cfg.StorytellerOllamaURL), err
	case "openai":
		llm, err := openai.New(openai.WithModel(model))
		return llm, "OpenAI model=" + model, err
	case "claude":
		llm, err := anthropic.New(anthropic.WithModel(model))
		return llm, "Claude model=" + model, err
	case "gemini":
		llm, err := googleai.New(context.Background(), googleai.WithDefaultModel(model))
		return llm, "Gemini model=" + model, err
	case "groq":
		llm, err := openai.New(
			openai.WithModel(model),
			openai.WithBaseURL("https://api.groq.com/openai/v1"),
			openai.WithToken(cfg.GroqAPIKey),
		)
		return llm, "Groq model=" + model, err
	case "openai-compatible":
		if cfg.StorytellerURL == "" {
			return nil, "", fmt.Errorf("storyteller_url is required for openai-compatible provider")
		}
		opts := []openai.Option{
			openai.WithModel(model),
			openai.WithBaseURL(cfg.StorytellerURL),
		}
		if cfg.StorytellerAPIKey != "" {
			opts = append(opts, openai.WithToken(cfg.StorytellerAPIKey))
		}
		llm, err := openai.New(opts...)
		return llm, fmt.Sprintf("openai-compatible model=%s url=%s", model, cfg.StorytellerURL), err
	}
	return nil, "", nil
}

// initStoryteller sets up the global storyteller from config. The feature
// stays off unless a provider is configured and its client initializes.
func initStoryteller(cfg AppConfig) {
	llm, desc, err := newStorytellerLLM(cfg)
	if err != nil {
		log.Printf("Storyteller: failed to init %s: %v", cfg.StorytellerProvider, err)
		return
	}
	if llm == nil {
		log.Printf("Storyteller: disabled (set storyteller_provider to enable)")
		return
	}
	globalStoryteller = &llmStoryteller{llm: llm, callOpts: buildCallOpts(cfg)}
	log.Printf("Storyteller: %s", desc)
}

// tellStory asynchronously streams a story about the latest death to the
// whole session. Returns immediately; story tokens appear progressively
// via story-update broadcasts. Must be called with the session lock held
// so the chronicle copy is consistent.
func (o *Orchestrator) tellStory(s *session) {
	if globalStoryteller == nil {
		return
	}

	gameID := s.game.ID
	history := make([]string, len(s.chronicle))
	copy(history, s.chronicle)

	go func() {
		// Buffer for streamed tokens, updated by the streaming callback
		var mu sync.Mutex
		var buf strings.Builder

		// Flush goroutine: pushes partial text to clients every 300ms
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(300 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					text := buf.String()
					mu.Unlock()
					if text != "" {
						o.emitter.ToSession(gameID, EvStoryUpdate, storyPayload{Story: strings.TrimSpace(text)})
					}
				case <-done:
					return
				}
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		finalText, err := globalStoryteller.Tell(ctx, history, func(chunk string) {
			mu.Lock()
			buf.WriteString(chunk)
			mu.Unlock()
		})

		close(done)

		if err != nil {
			log.Printf("tellStory: storyteller error: %v", err)
			return
		}
		if finalText == "" {
			return
		}

		o.emitter.ToSession(gameID, EvStoryUpdate, storyPayload{Story: finalText})
		log.Printf("Storyteller: completed story for game %s", gameID)
	}()
}
