package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/onedreamlabs/onedream-staking-indexer/pkg"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName = "config.yml"
	configPathEnv         = "ONEDREAM_CONFIG"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:          "onedream-staking-indexer",
		Short:        "Read model and transaction tooling for the 1DREAM staking contracts",
		SilenceUsage: true,
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := pkg.Getenv(configPathEnv, getDefaultConfigFile(homePath, defaultConfigFileName))

	rootCmd.AddCommand(StartServerCmd())
	rootCmd.AddCommand(DumpReferralsCmd())
	rootCmd.AddCommand(StakingTxCmds()...)
	rootCmd.AddCommand(VaultTxCmds()...)
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))

	return rootCmd.Execute()
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}
