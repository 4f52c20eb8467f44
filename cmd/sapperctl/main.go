package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sapperctl",
		Short: "工兵への危険区域の割り当てと経路コストの計算を行うCLI",
	}

	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(assignCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func planCmd() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan [scenario-file]",
		Short: "シナリオを読み込み、割り当て・経路計画・コスト評価を実行する",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "経路戦略 (sequential, nearest_neighbor, two_opt)")
	cmd.Flags().Float64VarP(&opts.weight, "weight", "w", -1, "標高の重み係数（負の値は設定・シナリオの値を使う）")
	cmd.Flags().StringVar(&opts.elevationURL, "elevation-url", "", "Open-Elevation APIのベースURL")
	cmd.Flags().BoolVar(&opts.flat, "flat", false, "標高APIを呼ばず、すべての地点を標高0として計算する")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "出力形式 (text, json, geojson)")
	return cmd
}

func assignCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "assign [scenario-file]",
		Short: "シナリオを読み込み、ゾーンの割り当てのみを行う",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd.Context(), cmd.OutOrStdout(), args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "出力形式 (text, json)")
	return cmd
}
