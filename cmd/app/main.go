package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	adminservice "waste-collect/internal/admin-service"
	authservice "waste-collect/internal/auth-service"
	"waste-collect/internal/config"
	"waste-collect/internal/mylogger"
	pickupservice "waste-collect/internal/pickup-service"
	rewardsservice "waste-collect/internal/rewards-service"
	"waste-collect/internal/simulator"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "waste-collect",
	Short: "Household waste collection coordination services",
	Long: `waste-collect runs the services of the waste collection platform:
pickup lifecycle, points ledger and rewards, admin reporting and auth.
Each service is its own subcommand and listens on its own port.`,
}

type executeFunc func(ctx context.Context, mylog mylogger.Logger, cfg *config.Config) error

func serviceCommand(name, short string, execute executeFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, mylog, err := setup()
			if err != nil {
				return err
			}
			mylog.Action(name + "_starting").Info("service starting")
			return execute(cmd.Context(), mylog, cfg)
		},
	}
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the whole pickup and rewards flow against in-memory adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mylog, err := setup()
		if err != nil {
			return err
		}

		citizens, _ := cmd.Flags().GetInt("citizens")
		drivers, _ := cmd.Flags().GetInt("drivers")
		pickups, _ := cmd.Flags().GetInt("pickups")
		seed, _ := cmd.Flags().GetInt64("seed")

		sim := simulator.New(mylog, simulator.Config{
			Citizens:  citizens,
			Drivers:   drivers,
			Pickups:   pickups,
			Seed:      seed,
			JwtSecret: cfg.App.JwtSecret,
		})
		return sim.Run(cmd.Context())
	},
}

func setup() (*config.Config, mylogger.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	mylog, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, mylog, nil
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "cannot read config file %s: %v\n", cfgFile, err)
			os.Exit(1)
		}
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (environment variables override it)")

	simulateCmd.Flags().Int("citizens", 20, "number of citizens to simulate")
	simulateCmd.Flags().Int("drivers", 8, "number of drivers to simulate")
	simulateCmd.Flags().Int("pickups", 100, "number of pickups to play through")
	simulateCmd.Flags().Int64("seed", 42, "random seed")

	rootCmd.AddCommand(
		serviceCommand("pickup-service", "Run the pickup lifecycle service", pickupservice.Execute),
		serviceCommand("rewards-service", "Run the points ledger and rewards service", rewardsservice.Execute),
		serviceCommand("admin-service", "Run the admin reporting service", adminservice.Execute),
		serviceCommand("auth-service", "Run the registration and login service", authservice.Execute),
		simulateCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
