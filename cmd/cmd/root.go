package cmd

const AppName = "scandisk"

// Execute builds the root command and runs it. Per spec §6, the tool's
// primary surface is the root command itself taking an image path
// (`scandisk <image-path>`); -v, --report, and --dry-run are the only
// flags it registers, and browse is the one additional subcommand.
func Execute() error {
	rootCmd := DefineScandiskCommand()
	rootCmd.AddCommand(DefineBrowseCommand())

	return rootCmd.Execute()
}
