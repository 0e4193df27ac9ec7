package play

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbennett/easel/cmd/util"
	"github.com/mbennett/easel/host/client"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
	"github.com/mbennett/easel/lib/play"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	host client.IHost

	// PlayCommands represents the play command group
	PlayCommands = &cobra.Command{
		Use:               "play",
		Short:             "Execute host operations",
		PersistentPreRunE: setupHostClient,
	}

	// fetchCmd prints a document's layer hierarchy
	fetchCmd = &cobra.Command{
		Use:   "fetch [document]",
		Short: "Fetch a document's layer hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}

	// runCmd executes a single command against a document
	runCmd = &cobra.Command{
		Use:   "run [document] [command]",
		Short: "Run a command against a document",
		Long:  "Run a single host command against a document. With --lock-safe the command is bracketed with the unlock and relock operations needed to make it pass on lock-protected layers.",
		Args:  cobra.ExactArgs(2),
		RunE:  runRun,
	}

	// lockCmd toggles layer locks
	lockCmd = &cobra.Command{
		Use:   "lock [document] [layers]",
		Short: "Lock layers of a document",
		Long:  "Lock the given layers (comma-separated IDs) of a document.",
		Args:  cobra.ExactArgs(2),
		RunE:  makeLockRunner(true),
	}

	// unlockCmd clears layer locks
	unlockCmd = &cobra.Command{
		Use:   "unlock [document] [layers]",
		Short: "Unlock layers of a document",
		Long:  "Unlock the given layers (comma-separated IDs) of a document.",
		Args:  cobra.ExactArgs(2),
		RunE:  makeLockRunner(false),
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add subcommands to the play command
	PlayCommands.AddCommand(fetchCmd)
	PlayCommands.AddCommand(runCmd)
	PlayCommands.AddCommand(lockCmd)
	PlayCommands.AddCommand(unlockCmd)

	// Add common host-link flags to the play command
	util.SetupLinkFlags(PlayCommands)

	// Add flags specific to run
	runCmd.Flags().String("layers", "", util.WrapString("Comma-separated layer IDs the command targets"))
	runCmd.Flags().Bool("lock-safe", false, util.WrapString("Temporarily unlock lock-protected target layers for the duration of the command"))
	runCmd.Flags().Bool("modal", false, util.WrapString("Request exclusive host-UI focus while the command runs"))
}

// setupHostClient initializes the host client
func setupHostClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetLinkConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetClientTransport()
	if err != nil {
		return err
	}

	// Create the host client
	host, err = client.NewHostClient(
		*config,
		t,
		s,
	)

	return err
}

// runFetch handles the fetch command
func runFetch(_ *cobra.Command, args []string) error {
	docID := document.DocumentID(args[0])

	layers, err := host.FetchDocument(docID)
	if err != nil {
		return fmt.Errorf("failed to fetch document: %v", err)
	}

	fmt.Printf("document=%s layers=%d\n", docID, len(layers))
	for _, l := range layers {
		lock := " "
		if l.Locked {
			lock = "*"
		}
		fmt.Printf("  %s %4d  parent=%-4d %s\n", lock, l.ID, l.Parent, l.Name)
	}

	return nil
}

// runRun handles the run command
func runRun(_ *cobra.Command, args []string) error {
	docID := document.DocumentID(args[0])

	layers, err := parseLayerIDs(viper.GetString("layers"))
	if err != nil {
		return err
	}

	cmd := common.Command{
		Name:   args[1],
		Layers: layers,
	}
	opts := common.PlayOptions{Modal: viper.GetBool("modal")}

	var resp common.Response
	if viper.GetBool("lock-safe") {
		// Lock-safe plays need the lock structure of the document
		snapshot, err := host.FetchDocument(docID)
		if err != nil {
			return fmt.Errorf("failed to fetch document: %v", err)
		}
		doc, err := document.FromSnapshot(docID, snapshot)
		if err != nil {
			return fmt.Errorf("failed to rebuild document: %v", err)
		}

		resp, err = play.NewPlayer(host).LockSafePlay(doc, cmd, opts)
		if err != nil {
			return fmt.Errorf("lock-safe play failed: %v", err)
		}
	} else {
		resp, err = host.Play(docID, cmd, opts)
		if err != nil {
			return fmt.Errorf("play failed: %v", err)
		}
	}

	fmt.Printf("ok=%t command=%s\n", resp.Ok, resp.Command)
	if len(resp.Body) > 0 {
		fmt.Printf("body=%s\n", resp.Body)
	}

	return nil
}

// makeLockRunner builds the handler shared by lock and unlock
func makeLockRunner(locked bool) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		docID := document.DocumentID(args[0])

		layers, err := parseLayerIDs(args[1])
		if err != nil {
			return err
		}
		if len(layers) == 0 {
			return fmt.Errorf("no layers given")
		}

		resp, err := host.Play(docID, common.NewSetLockingCommand(layers, locked), common.PlayOptions{})
		if err != nil {
			return fmt.Errorf("setLocking failed: %v", err)
		}

		fmt.Printf("ok=%t locked=%t layers=%v\n", resp.Ok, locked, layers)
		return nil
	}
}

// parseLayerIDs parses a comma-separated list of layer IDs
func parseLayerIDs(s string) ([]document.LayerID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]document.LayerID, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid layer ID %q: %v", part, err)
		}
		out = append(out, document.LayerID(id))
	}
	return out, nil
}
