package sim

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/mbennett/easel/cmd/util"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/sim"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	simCmdConfig = &common.SimulatorConfig{}

	// SimCmd starts the host simulator
	SimCmd = &cobra.Command{
		Use:     "sim",
		Short:   "Start the host simulator",
		Long:    `Start the host simulator with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is EASEL_<flag> (e.g. EASEL_ENDPOINT=:9090)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	SimCmd.PersistentFlags().String(key, ":8080", util.WrapString("Address or socket path the simulator listens on"))

	key = "metrics-endpoint"
	SimCmd.PersistentFlags().String(key, "", util.WrapString("Optional address for the Prometheus metrics exposition (empty disables it)"))

	key = "timeout"
	SimCmd.PersistentFlags().Int(key, 10, util.WrapString("The timeout in seconds for a single request"))

	key = "seed"
	SimCmd.PersistentFlags().String(key, "", util.WrapString("Optional path to a JSON document seed file. Empty seeds the built-in demo document"))

	key = "log-level"
	SimCmd.PersistentFlags().String(key, "info", util.WrapString("The log level (debug, info, warn, error)"))
}

// processConfig reads the simulator configuration from viper
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	simCmdConfig.Endpoint = viper.GetString("endpoint")
	simCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	simCmdConfig.TimeoutSecond = viper.GetInt("timeout")
	simCmdConfig.SeedFile = viper.GetString("seed")
	simCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the host simulator
func run(_ *cobra.Command, _ []string) error {
	// Parse the serializer
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	// Parse the transport
	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	return sim.NewSimulator(
		*simCmdConfig,
		t,
		s,
	).Serve()
}

// initConfig reads in ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("easel")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
