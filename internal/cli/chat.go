package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ollama-relay/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model through a running relay",
	Long: `Start an interactive conversation through a running relay.
The conversation history is kept in memory by this command and sent with
every message; the relay itself stores nothing.

Type /reset to start over and /exit to quit.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().String("url", defaultRelayURL, "base URL of the relay")
	chatCmd.Flags().String("system", "", "system prompt sent as the first history entry")
	chatCmd.Flags().Duration("timeout", 5*time.Minute, "per-message timeout")
	rootCmd.AddCommand(chatCmd)
}

// lineReader yields one user line at a time and io.EOF when input ends.
type lineReader interface {
	ReadLine() (string, error)
}

// promptReader reads from the terminal with promptui.
type promptReader struct{}

func (promptReader) ReadLine() (string, error) {
	prompt := promptui.Prompt{
		Label: "you",
	}
	line, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", io.EOF
	}
	return line, err
}

// scanReader reads lines from piped input.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &scanReader{scanner: s}
}

func (r *scanReader) ReadLine() (string, error) {
	if r.scanner.Scan() {
		return r.scanner.Text(), nil
	}
	if err := r.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func newLineReader(in io.Reader) lineReader {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return promptReader{}
	}
	return newScanReader(in)
}

func runChat(cmd *cobra.Command, args []string) error {
	baseURL, _ := cmd.Flags().GetString("url")
	system, _ := cmd.Flags().GetString("system")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	client := newRelayClient(baseURL, timeout)
	reader := newLineReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	history := initialHistory(system)
	for {
		line, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/reset":
			history = initialHistory(system)
			fmt.Fprintln(out, "history cleared")
			continue
		}

		reply, err := client.Chat(cmd.Context(), line, history)
		if err != nil {
			// The turn is dropped so a retry does not duplicate it in history.
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, reply)

		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: line},
			llm.Message{Role: llm.RoleAssistant, Content: reply},
		)
	}
}

func initialHistory(system string) []llm.Message {
	if system == "" {
		return nil
	}
	return []llm.Message{{Role: llm.RoleSystem, Content: system}}
}
