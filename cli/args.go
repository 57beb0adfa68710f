package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kestralog/models"
)

// parseSearchArgs parses `logs search` arguments into a search filter and page number.
//
// Supported flags:
// - --namespace <ns> / --namespace=<ns>
// - --flow <id> / --flow=<id>
// - --min-level <level> / --min-level=<level>
// - --start <date> / --start=<date>
// - --end <date> / --end=<date>
//
// Remaining tokens form the search keyword. The last argument may be a page number.
func parseSearchArgs(args []string) (page int, filter models.SearchFilter, err error) {
	page = 1

	// Optional trailing page number.
	if len(args) > 0 {
		if p, parseErr := strconv.Atoi(args[len(args)-1]); parseErr == nil {
			page = p
			args = args[:len(args)-1]
		}
	}
	if page < 1 {
		page = 1
	}

	var keywordParts []string
	for i := 0; i < len(args); i++ {
		token := args[i]

		// --flag=value
		if strings.HasPrefix(token, "--") && strings.Contains(token, "=") {
			parts := strings.SplitN(token, "=", 2)
			if err := applySearchFlag(&filter, parts[0], strings.TrimSpace(parts[1])); err != nil {
				return 0, models.SearchFilter{}, err
			}
			continue
		}

		// --flag value
		if strings.HasPrefix(token, "--") {
			if i+1 >= len(args) {
				return 0, models.SearchFilter{}, fmt.Errorf("missing value for %s", token)
			}
			flagValue := strings.TrimSpace(args[i+1])
			i++
			if err := applySearchFlag(&filter, token, flagValue); err != nil {
				return 0, models.SearchFilter{}, err
			}
			continue
		}

		keywordParts = append(keywordParts, token)
	}

	filter.Query = strings.TrimSpace(strings.Join(keywordParts, " "))
	return page, filter, nil
}

func applySearchFlag(filter *models.SearchFilter, name, value string) error {
	switch name {
	case "--namespace":
		if value == "" {
			return fmt.Errorf("invalid --namespace: empty")
		}
		filter.Namespace = value
		return nil
	case "--flow":
		if value == "" {
			return fmt.Errorf("invalid --flow: empty")
		}
		filter.FlowID = value
		return nil
	case "--min-level":
		level, err := models.ParseLevel(value)
		if err != nil {
			return err
		}
		filter.MinLevel = level
		return nil
	case "--start":
		t, err := parseDateArg(value)
		if err != nil {
			return fmt.Errorf("invalid --start: %v", err)
		}
		filter.StartDate = t
		return nil
	case "--end":
		t, err := parseDateArg(value)
		if err != nil {
			return fmt.Errorf("invalid --end: %v", err)
		}
		filter.EndDate = t
		return nil
	default:
		return fmt.Errorf("unknown flag: %s", name)
	}
}

// parseLogFilterArgs parses execution-scoped filter flags shared by
// `logs list`, `logs download` and `logs delete`. Non-flag tokens are
// returned as positional arguments.
//
// Supported flags:
// - --min-level <level>
// - --task-id <id>
// - --task-run-id <id>
// - --attempt <n>
func parseLogFilterArgs(args []string) (filter models.LogFilter, positional []string, err error) {
	for i := 0; i < len(args); i++ {
		token := args[i]

		// --flag=value
		if strings.HasPrefix(token, "--") && strings.Contains(token, "=") {
			parts := strings.SplitN(token, "=", 2)
			if err := applyLogFilterFlag(&filter, parts[0], strings.TrimSpace(parts[1])); err != nil {
				return models.LogFilter{}, nil, err
			}
			continue
		}

		// --flag value
		if strings.HasPrefix(token, "--") {
			if i+1 >= len(args) {
				return models.LogFilter{}, nil, fmt.Errorf("missing value for %s", token)
			}
			flagValue := strings.TrimSpace(args[i+1])
			i++
			if err := applyLogFilterFlag(&filter, token, flagValue); err != nil {
				return models.LogFilter{}, nil, err
			}
			continue
		}

		positional = append(positional, token)
	}

	return filter, positional, nil
}

func applyLogFilterFlag(filter *models.LogFilter, name, value string) error {
	switch name {
	case "--min-level":
		level, err := models.ParseLevel(value)
		if err != nil {
			return err
		}
		filter.MinLevel = level
		return nil
	case "--task-id":
		if value == "" {
			return fmt.Errorf("invalid --task-id: empty")
		}
		filter.TaskID = value
		return nil
	case "--task-run-id":
		if value == "" {
			return fmt.Errorf("invalid --task-run-id: empty")
		}
		filter.TaskRunID = value
		return nil
	case "--attempt":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid --attempt: %q", value)
		}
		filter.Attempt = &n
		return nil
	default:
		return fmt.Errorf("unknown flag: %s", name)
	}
}

// parseFollowArgs parses `follow` arguments: positional tokens plus an
// optional --min-level flag. Other flags are rejected since the stream
// endpoint only supports a level filter.
func parseFollowArgs(args []string) (models.Level, []string, error) {
	value, rest, err := extractFlagValue(args, "--min-level")
	if err != nil {
		return "", nil, err
	}

	level, err := models.ParseLevel(value)
	if err != nil {
		return "", nil, err
	}

	var positional []string
	for _, token := range rest {
		if strings.HasPrefix(token, "--") {
			return "", nil, fmt.Errorf("unknown flag: %s", token)
		}
		positional = append(positional, token)
	}

	return level, positional, nil
}

// extractFlagValue removes a single `--flag value` / `--flag=value` pair from
// args and returns its value with the remaining arguments.
func extractFlagValue(args []string, name string) (value string, rest []string, err error) {
	for i := 0; i < len(args); i++ {
		token := args[i]

		if token == name {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("missing value for %s", name)
			}
			value = strings.TrimSpace(args[i+1])
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+2:]...)
			return value, rest, nil
		}

		if strings.HasPrefix(token, name+"=") {
			value = strings.TrimSpace(strings.TrimPrefix(token, name+"="))
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+1:]...)
			return value, rest, nil
		}
	}

	return "", args, nil
}

// parseDateArg accepts RFC3339 timestamps or plain dates (YYYY-MM-DD).
func parseDateArg(value string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, fmt.Errorf("expected RFC3339 timestamp or YYYY-MM-DD, got %q", value)
}
