package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	setto "github.com/settopay/setto-server-sdk-go"
	"github.com/settopay/setto-server-sdk-go/internal/database"
	"github.com/settopay/setto-server-sdk-go/internal/utils"
)

// printResult writes v to the command output in the configured format
func (c *cli) printResult(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if c.config.GetConfigWithDefault("output", "json") == "yaml" {
		if data, err = jsonToYAML(data); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		data = append(data, '\n')
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// jsonToYAML re-encodes JSON as block-style YAML, keeping field order and the
// JSON field names.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)
	return yaml.Marshal(&node)
}

func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

// openJournal opens the call journal on first use. A journal that cannot be
// opened is logged and skipped.
func (c *cli) openJournal() *database.SQLiteManager {
	c.journalMu.Lock()
	defer c.journalMu.Unlock()

	if c.journal != nil {
		return c.journal
	}

	paths := utils.GetAppPaths("")
	path := utils.ResolvePath(paths.DataDir, c.config.GetConfigWithDefault("database_file", "setto.db"))

	journal, err := database.NewSQLiteManager(path, c.logger)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Call journal unavailable: %v", err), logCategory)
		return nil
	}
	c.journal = journal
	return journal
}

// track runs call with a fresh request ID and records the outcome in the call
// journal. Calls rejected locally never reach the platform and are not recorded,
// and nothing is recorded with journal=false.
func (c *cli) track(ctx context.Context, op, target string, call func(ctx context.Context) error) error {
	requestID := uuid.NewString()
	started := time.Now()

	err := call(setto.WithRequestID(ctx, requestID))

	if setto.KindOf(err) == setto.KindPrecondition || !c.config.GetConfigBool("journal", true) {
		return err
	}

	rec := &database.CallRecord{
		RequestID:      requestID,
		Operation:      op,
		Target:         target,
		Environment:    c.env.String(),
		Outcome:        "ok",
		KeyFingerprint: c.fingerprint,
		DurationMS:     time.Since(started).Milliseconds(),
		CreatedAt:      started,
	}
	if err != nil {
		rec.Outcome = setto.KindOf(err).String()
		rec.Code = setto.CodeOf(err)
		rec.HTTPStatus = setto.StatusOf(err)
	}

	if journal := c.openJournal(); journal != nil {
		if jerr := journal.RecordCall(rec); jerr != nil {
			c.logger.Warn(fmt.Sprintf("Failed to journal %s: %v", op, jerr), logCategory)
		}
	}

	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// promptSecret reads a line from the terminal without echo
func promptSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // New line after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read input: %v", err)
	}
	return strings.TrimSpace(string(secret)), nil
}

// readSecret prompts on a terminal and otherwise reads the first line of in
func readSecret(in io.Reader, prompt string) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(f) {
		return promptSecret(prompt)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %v", err)
	}
	return strings.TrimSpace(line), nil
}
