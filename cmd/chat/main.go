package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coursedocs/course-assistant/internal/bootstrap"
	"github.com/coursedocs/course-assistant/internal/config"
	"github.com/coursedocs/course-assistant/internal/core/domain"
	"github.com/coursedocs/course-assistant/internal/core/usecase"
	"github.com/coursedocs/course-assistant/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewTextLogger("chat", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "chat")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	fmt.Println("Course Materials Assistant")
	fmt.Println("Ask a question about your course materials.")
	fmt.Printf("Commands: /topics, /topic <name>, exit\n\n")

	// The transcript lives only for this session and is owned here, not
	// by the pipeline.
	var transcript domain.Transcript
	topic := domain.TopicAll

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for prompt(topic); scanner.Scan(); prompt(topic) {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return
		case line == "/topics":
			fmt.Printf("Topics: %s\n", strings.Join(app.Topics, ", "))
			continue
		case strings.HasPrefix(line, "/topic "):
			requested := strings.TrimSpace(strings.TrimPrefix(line, "/topic "))
			if !containsTopic(app.Topics, requested) {
				fmt.Printf("Unknown topic %q. Use /topics to list the options.\n", requested)
				continue
			}
			topic = requested
			fmt.Printf("Search restricted to topic %q.\n", topic)
			continue
		}

		updated, answer, err := app.Session.RunTurn(ctx, transcript, line, topic)
		transcript = updated
		if err != nil {
			fmt.Println(usecase.UserFacingMessage(err))
			continue
		}
		fmt.Printf("\n%s\n\n", answer.Text)
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

func prompt(topic string) {
	fmt.Printf("[%s] > ", topic)
}

func containsTopic(topics []string, topic string) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}
