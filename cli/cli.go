package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"kestralog/kestra"
	"kestralog/models"
	"kestralog/service"
	"kestralog/version"
)

// CLI is the interactive command line interface
type CLI struct {
	rl       *readline.Instance
	running  bool
	client   *kestra.Client
	config   *Config
	server   string
	pageSize int
}

// NewCLI creates a new CLI instance connected to the default server.
func NewCLI(client *kestra.Client, config *Config, serverName string, pageSize int) (*CLI, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	if pageSize < 1 {
		pageSize = models.DefaultSearchSize
	}

	return &CLI{
		rl:       rl,
		running:  true,
		client:   client,
		config:   config,
		server:   serverName,
		pageSize: pageSize,
	}, nil
}

// Start runs the CLI loop
func (c *CLI) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				fmt.Println("\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *CLI) printWelcome() {
	PrintBanner("kestralog - Kestra Log Client")
	fmt.Printf("\nServer: %s (%s, tenant %q)\n", c.server, c.client.BaseURL(), c.client.Tenant())
	fmt.Println("Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLI) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "logs", "log":
		c.handleLogsCommand(args)
	case "flow":
		c.handleFlowCommand(args)
	case "follow", "tail":
		c.handleFollowCommand(args)
	case "archive", "arc":
		c.handleArchiveCommand(args)
	case "server", "srv":
		c.handleServerCommand(args)
	case "version":
		fmt.Println(version.GetBuildInfo())
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.handleExit()
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *CLI) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"", ""},
		{"EXECUTION LOGS:", ""},
		{"logs list <execution-id> [filters]", "List logs of an execution"},
		{"logs download <execution-id> [filters] [--out <file>]", "Download logs as plain text"},
		{"logs search [keyword] [filters] [page]", "Search logs across executions"},
		{"logs delete <execution-id> [filters]", "Delete logs of an execution"},
		{"", ""},
		{"  filters: --min-level <L> --task-id <T> --task-run-id <R> --attempt <N>", ""},
		{"  search filters: --namespace <NS> --flow <F> --min-level <L> --start <D> --end <D>", ""},
		{"", ""},
		{"FLOW LOGS:", ""},
		{"flow delete <namespace> <flow-id> [--trigger-id <T>]", "Delete logs of a whole flow"},
		{"", ""},
		{"LIVE STREAM:", ""},
		{"follow <execution-id> [--min-level <L>]", "Follow logs in real time (Enter stops)"},
		{"", ""},
		{"LOCAL ARCHIVE:", ""},
		{"archive pull <execution-id>", "Fetch an execution's logs into the archive"},
		{"archive search [keyword] [filters] [page]", "Search the offline archive"},
		{"archive clear", "Remove all archived logs"},
		{"", ""},
		{"SERVERS:", ""},
		{"server list", "List configured servers"},
		{"server add <name> <url> [tenant]", "Add a server (token prompted)"},
		{"server remove <name>", "Remove a server"},
		{"server use <name>", "Switch the active server"},
		{"", ""},
		{"SYSTEM:", ""},
		{"version", "Show build info"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Printf("  %-55s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
}

// handleLogsCommand handles log-related commands
func (c *CLI) handleLogsCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: logs <list|download|search|delete> [args]")
		return
	}

	switch args[0] {
	case "list", "ls", "get":
		c.listLogs(args[1:])
	case "download", "dl":
		c.downloadLogs(args[1:])
	case "search", "find":
		c.searchLogs(args[1:])
	case "delete", "del", "rm":
		c.deleteLogs(args[1:])
	default:
		fmt.Printf("Unknown logs command: %s\n", args[0])
	}
}

// listLogs fetches and prints logs of an execution
func (c *CLI) listLogs(args []string) {
	filter, positional, err := parseLogFilterArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(positional) != 1 {
		fmt.Println("Usage: logs list <execution-id> [--min-level L] [--task-id T] [--task-run-id R] [--attempt N]")
		return
	}

	entries, err := c.client.ExecutionLogs(context.Background(), positional[0], filter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(entries) == 0 {
		fmt.Println("No logs found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Execution %s: %d log entries", positional[0], len(entries)))
	fmt.Println()
	printLogTable(entries)
}

// downloadLogs fetches an execution's logs as plain text
func (c *CLI) downloadLogs(args []string) {
	outFile, args, err := extractFlagValue(args, "--out")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	filter, positional, err := parseLogFilterArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(positional) != 1 {
		fmt.Println("Usage: logs download <execution-id> [filters] [--out <file>]")
		return
	}

	text, err := c.client.DownloadLogs(context.Background(), positional[0], filter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if outFile == "" {
		fmt.Print(text)
		if !strings.HasSuffix(text, "\n") {
			fmt.Println()
		}
		return
	}

	if err := os.WriteFile(outFile, []byte(text), 0644); err != nil {
		fmt.Printf("Error writing %s: %v\n", outFile, err)
		return
	}
	fmt.Printf("✓ Logs written to %s (%d bytes)\n", outFile, len(text))
}

// searchLogs searches logs across executions
func (c *CLI) searchLogs(args []string) {
	page, filter, err := parseSearchArgs(args)
	if err != nil {
		fmt.Println("Usage: logs search [keyword] [--namespace NS] [--flow F] [--min-level L] [--start D] [--end D] [page]")
		fmt.Printf("Error: %v\n", err)
		return
	}

	filter.Page = page
	filter.Size = c.pageSize

	result, err := c.client.SearchLogs(context.Background(), filter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if result.Total == 0 {
		fmt.Println("No logs found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Log Search (Page %d/%d, Total: %d)", page, result.TotalPages(c.pageSize), result.Total))
	fmt.Println()
	printLogTable(result.Results)
}

// deleteLogs deletes logs of an execution
func (c *CLI) deleteLogs(args []string) {
	filter, positional, err := parseLogFilterArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(positional) != 1 {
		fmt.Println("Usage: logs delete <execution-id> [--min-level L] [--task-id T] [--task-run-id R] [--attempt N]")
		return
	}

	confirm := c.readInput(fmt.Sprintf("Delete logs of execution '%s'? Deleted logs cannot be recovered. (yes/no)", positional[0]), "no")
	if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
		fmt.Println("Cancelled.")
		return
	}

	result, err := c.client.DeleteExecutionLogs(context.Background(), positional[0], filter)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("✓ Logs deleted (status: %s)\n", result.Status)
}

// handleFlowCommand handles flow-level log commands
func (c *CLI) handleFlowCommand(args []string) {
	if len(args) == 0 || args[0] != "delete" {
		fmt.Println("Usage: flow delete <namespace> <flow-id> [--trigger-id <T>]")
		return
	}

	triggerID, rest, err := extractFlagValue(args[1:], "--trigger-id")
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(rest) != 2 {
		fmt.Println("Usage: flow delete <namespace> <flow-id> [--trigger-id <T>]")
		return
	}
	namespace, flowID := rest[0], rest[1]

	confirm := c.readInput(fmt.Sprintf("Delete logs of flow '%s/%s'? Deleted logs cannot be recovered. (yes/no)", namespace, flowID), "no")
	if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
		fmt.Println("Cancelled.")
		return
	}

	result, err := c.client.DeleteFlowLogs(context.Background(), namespace, flowID, triggerID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("✓ Flow logs deleted (status: %s)\n", result.Status)
}

// handleFollowCommand streams logs of a running execution
func (c *CLI) handleFollowCommand(args []string) {
	minLevel, positional, err := parseFollowArgs(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(positional) != 1 {
		fmt.Println("Usage: follow <execution-id> [--min-level <L>]")
		return
	}
	executionID := positional[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Following execution %s... press Enter to stop\n\n", executionID)

	done := make(chan error, 1)
	go func() {
		done <- c.client.FollowLogs(ctx, executionID, minLevel, func(entry models.LogEntry) error {
			fmt.Println(formatLogLine(entry))
			return nil
		})
	}()

	// Readline returns when the user presses Enter (or Ctrl+C).
	stopped := make(chan struct{})
	go func() {
		_, _ = c.rl.Readline()
		close(stopped)
	}()

	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			fmt.Printf("Stream error: %v\n", err)
		} else {
			fmt.Println("Stream ended.")
		}
		fmt.Println("Press Enter to continue")
		<-stopped
	case <-stopped:
		cancel()
		<-done
		fmt.Println("Stopped following.")
	}
}

// handleArchiveCommand handles local archive commands
func (c *CLI) handleArchiveCommand(args []string) {
	if service.GlobalServices == nil || service.GlobalServices.Archive == nil {
		fmt.Println("Archive is not available (database not initialized).")
		return
	}

	if len(args) == 0 {
		fmt.Println("Usage: archive <pull|search|clear> [args]")
		return
	}

	switch args[0] {
	case "pull":
		if len(args) != 2 {
			fmt.Println("Usage: archive pull <execution-id>")
			return
		}
		count, err := service.GlobalServices.Logs.Pull(context.Background(), args[1])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("✓ Archived %d log entries for execution %s\n", count, args[1])
	case "search", "find":
		c.searchArchive(args[1:])
	case "clear":
		confirm := c.readInput("Clear all archived logs? (yes/no)", "no")
		if strings.ToLower(confirm) != "yes" && strings.ToLower(confirm) != "y" {
			fmt.Println("Cancelled.")
			return
		}
		if err := service.GlobalServices.Archive.Clear(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("✓ Archive cleared successfully!")
	default:
		fmt.Printf("Unknown archive command: %s\n", args[0])
	}
}

// searchArchive searches the offline archive
func (c *CLI) searchArchive(args []string) {
	page, searchFilter, err := parseSearchArgs(args)
	if err != nil {
		fmt.Println("Usage: archive search [keyword] [--namespace NS] [--flow F] [--min-level L] [--start D] [--end D] [page]")
		fmt.Printf("Error: %v\n", err)
		return
	}

	filter := service.ArchiveFilter{
		Query:     searchFilter.Query,
		Namespace: searchFilter.Namespace,
		FlowID:    searchFilter.FlowID,
		MinLevel:  searchFilter.MinLevel,
		Start:     searchFilter.StartDate,
		End:       searchFilter.EndDate,
	}

	entries, total, err := service.GlobalServices.Archive.Search(filter, page, c.pageSize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if total == 0 {
		fmt.Println("No archived logs found.")
		return
	}

	totalPages := (int(total) + c.pageSize - 1) / c.pageSize

	fmt.Println()
	PrintBanner(fmt.Sprintf("Archive Search (Page %d/%d, Total: %d)", page, totalPages, total))
	fmt.Println()
	printLogTable(entries)
}

// handleServerCommand manages the multi-server configuration
func (c *CLI) handleServerCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: server <list|add|remove|use> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		c.listServers()
	case "add", "create":
		c.addServer(args[1:])
	case "remove", "rm", "del":
		if len(args) < 2 {
			fmt.Println("Usage: server remove <name>")
			return
		}
		if err := c.config.RemoveServer(args[1]); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("✓ Server '%s' removed\n", args[1])
	case "use", "switch":
		if len(args) < 2 {
			fmt.Println("Usage: server use <name>")
			return
		}
		c.useServer(args[1])
	default:
		fmt.Printf("Unknown server command: %s\n", args[0])
	}
}

// listServers lists configured servers
func (c *CLI) listServers() {
	servers := c.config.ListServers()
	if len(servers) == 0 {
		fmt.Println("No servers configured.")
		return
	}

	fmt.Println()
	fmt.Printf("%-15s %-35s %-10s %-8s %s\n", "Name", "URL", "Tenant", "Active", "Description")
	fmt.Println(strings.Repeat("-", 90))

	for name, server := range servers {
		active := ""
		if name == c.server {
			active = "✓"
		}
		tenant := server.Tenant
		if tenant == "" {
			tenant = kestra.DefaultTenant
		}
		fmt.Printf("%-15s %-35s %-10s %-8s %s\n",
			truncate(name, 15),
			truncate(server.URL, 35),
			truncate(tenant, 10),
			active,
			truncate(server.Description, 25),
		)
	}
}

// addServer adds a server entry; the token is prompted without echo
func (c *CLI) addServer(args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: server add <name> <url> [tenant]")
		return
	}

	server := ServerConfig{URL: args[1], Tenant: kestra.DefaultTenant}
	if len(args) > 2 {
		server.Tenant = args[2]
	}

	token, err := c.rl.ReadPassword("API token (optional): ")
	if err == nil && len(token) > 0 {
		server.Token = strings.TrimSpace(string(token))
	}
	server.Description = c.readInput("Description (optional)", "")

	if err := c.config.AddServer(args[0], server); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("✓ Server '%s' added\n", args[0])
}

// useServer switches the active server and rebuilds the client
func (c *CLI) useServer(name string) {
	server, err := c.config.GetServer(name)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if err := c.config.SetDefault(name); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	c.client = kestra.NewClient(server.URL, server.Tenant, server.Token)
	c.server = name
	if service.GlobalServices != nil {
		service.GlobalServices.SetClient(c.client)
	}
	fmt.Printf("✓ Switched to server '%s' (%s)\n", name, server.URL)
}

// clearScreen clears the console
func (c *CLI) clearScreen() {
	fmt.Print("\033[H\033[2J")
}

// handleExit exits the CLI
func (c *CLI) handleExit() {
	fmt.Println("\nShutting down...")
	c.running = false
}

// readInput reads user input with an optional default
func (c *CLI) readInput(prompt, defaultValue string) string {
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(prompt + ": ")
	}
	defer c.rl.SetPrompt("> ")

	line, err := c.rl.Readline()
	if err != nil {
		return defaultValue
	}

	input := strings.TrimSpace(line)
	if input == "" && defaultValue != "" {
		return defaultValue
	}
	return input
}

// printLogTable renders log entries as a fixed-width table
func printLogTable(entries []models.LogEntry) {
	fmt.Printf("%-20s %-6s %-20s %-20s %s\n", "Time", "Level", "Task", "Flow", "Message")
	fmt.Println(strings.Repeat("-", 110))

	for _, entry := range entries {
		fmt.Printf("%-20s %-6s %-20s %-20s %s\n",
			entry.Timestamp.Local().Format("2006-01-02 15:04:05"),
			entry.Level,
			truncate(entry.TaskID, 20),
			truncate(entry.Namespace+"/"+entry.FlowID, 20),
			truncate(entry.Message, 60),
		)
	}
}

// formatLogLine renders a streamed log entry as a single line
func formatLogLine(entry models.LogEntry) string {
	task := entry.TaskID
	if task == "" {
		task = "-"
	}
	return fmt.Sprintf("%s %-5s [%s] %s",
		entry.Timestamp.Local().Format(time.TimeOnly),
		entry.Level,
		task,
		entry.Message,
	)
}

// truncate shortens a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
