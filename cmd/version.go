package cmd

import (
	"fmt"

	"github.com/haierkeys/site-text-service/internal/app"
	"github.com/haierkeys/site-text-service/internal/dto"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
)

func init() {
	var asJSON bool

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version info and exit // 打印版本信息并退出",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !asJSON {
				_, err := fmt.Fprintf(out, "%s v%s (git %s, built %s)\n", app.Name, app.Version, app.GitTag, app.BuildTime)
				return err
			}
			data, err := sonic.MarshalIndent(&dto.VersionDTO{Version: app.Version, GitTag: app.GitTag, BuildTime: app.BuildTime}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
	versionCmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON // 以 JSON 输出")
	rootCmd.AddCommand(versionCmd)
}
