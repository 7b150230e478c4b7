package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/ragbot/ingestion"
	"github.com/poiesic/ragbot/search"
)

// chatBot is the part of ragbot.Bot used by the interactive menu.
type chatBot interface {
	TrainURL(ctx context.Context, url string) (*ingestion.Report, error)
	TrainFile(ctx context.Context, path string) (*ingestion.Report, error)
	Ask(ctx context.Context, query string) (*search.Answer, error)
	StoreLocation() string
	Threshold() float32
}

const menu = `--- RAG Chatbot ---
1. Train from a website (URL)
2. Train from a file
3. Ask the chatbot (requires training data)
4. Exit
`

// runChat drives the interactive menu until the user exits, the input ends
// or ctx is canceled. Failed operations are reported and the loop continues.
func runChat(ctx context.Context, bot chatBot, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	fmt.Fprint(out, menu)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		choice, ok := prompt("Choose an option: ")
		if !ok {
			return scanner.Err()
		}

		switch choice {
		case "1":
			url, ok := prompt("Website URL to train on: ")
			if !ok {
				return scanner.Err()
			}
			if url == "" {
				fmt.Fprintln(out, "URL must not be empty.")
				break
			}
			fmt.Fprintf(out, "Fetching content from %s\n", url)
			report, err := bot.TrainURL(ctx, url)
			if err != nil {
				fmt.Fprintf(out, "Training failed: %v\n", err)
				break
			}
			printReport(out, report, bot.StoreLocation())
		case "2":
			path, ok := prompt("File path to train on: ")
			if !ok {
				return scanner.Err()
			}
			if path == "" {
				fmt.Fprintln(out, "File path must not be empty.")
				break
			}
			fmt.Fprintf(out, "Reading %s\n", path)
			report, err := bot.TrainFile(ctx, path)
			if err != nil {
				fmt.Fprintf(out, "Training failed: %v\n", err)
				break
			}
			printReport(out, report, bot.StoreLocation())
		case "3":
			query, ok := prompt("Ask the chatbot something: ")
			if !ok {
				return scanner.Err()
			}
			if query == "" {
				fmt.Fprintln(out, "Question must not be empty.")
				break
			}
			fmt.Fprintln(out, "Searching for relevant information...")
			answer, err := bot.Ask(ctx, query)
			if err != nil {
				fmt.Fprintf(out, "Error: %s\n", describeAskError(err))
				break
			}
			printAnswer(out, answer, bot.Threshold())
		case "4":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(out, "Invalid choice. Please try again.")
		}
		fmt.Fprintln(out, "\n---")
	}
}
