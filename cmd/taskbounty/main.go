package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/taskbounty/internal/client"
	"github.com/kazz187/taskbounty/pkg/cerr"
)

var (
	app = kingpin.New("taskbounty", "Browse, create and settle on-chain task bounties")

	serverURL = app.Flag("server", "taskbounty-server URL").Envar("TASKBOUNTY_CLI_SERVER_URL").String()
	output    = app.Flag("output", "Output format").Short('o').Default("table").Enum("table", "json", "yaml")

	sessionCmd    = app.Command("session", "Show the wallet session")
	connectCmd    = app.Command("connect", "Connect the wallet and fetch tasks")
	disconnectCmd = app.Command("disconnect", "Disconnect the wallet")

	tabCmd  = app.Command("tab", "Select the active tab")
	tabName = tabCmd.Arg("tab", "Tab to select").Required().Enum("open_bounties", "create_task", "complete_task")

	refreshCmd  = app.Command("refresh", "Fetch all tasks from the registry")
	refreshDiff = refreshCmd.Flag("diff", "Show what changed since the previous fetch").Bool()

	viewsCmd = app.Command("views", "Show tasks partitioned for the connected wallet")
	viewsTab = viewsCmd.Flag("tab", "Only show the tasks one tab displays").Enum("open_bounties", "create_task", "complete_task")

	createCmd         = app.Command("create", "Create a task with a bounty")
	createDescription = createCmd.Arg("description", "Task description").Required().String()
	createBounty      = createCmd.Arg("bounty", "Bounty amount, e.g. 2.5").Required().String()

	registerCmd = app.Command("register", "Register the wallet as a participant")
	registerID  = registerCmd.Arg("id", "Task ID").Required().Uint64()

	completeCmd         = app.Command("complete", "Mark a task complete and pay out a participant")
	completeID          = completeCmd.Arg("id", "Task ID").Required().Uint64()
	completeParticipant = completeCmd.Arg("participant", "Participant address to pay").Required().String()

	watchCmd   = app.Command("watch", "Stream session events")
	watchTypes = watchCmd.Flag("type", "Only show events of this type (repeatable)").Strings()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &CLI{
		client: client.NewSessionClient(cfg.ServerURL, cfg.APIKey),
		out:    newPrinter(os.Stdout, *output),
	}
	if err := cli.dispatch(ctx, command); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func printError(w *os.File, err error) {
	if reason := cerr.ReasonOf(err); reason != "" {
		fmt.Fprintf(w, "Error (%s): %v\n", reason, err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
