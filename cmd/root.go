package cmd

import (
	"fmt"
	"os"

	"github.com/haierkeys/site-text-service/internal/app"

	"github.com/spf13/cobra"
)

// configDefault 内置默认配置，首次运行时写入磁盘
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "site-text-service",
	Short: app.Name,
	Long: app.Name + " stores editable site text blocks with a full version history.\n" +
		"站点文本服务：可编辑文本块存储与版本历史。",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute 执行根命令，c 为内置的默认配置文件内容
func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
