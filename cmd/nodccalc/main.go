package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
)

type CLI struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`

	Derive  DeriveCmd  `cmd:"" help:"Derive NOx, DIN, oxygen and oxygen saturation for a CSV table."`
	Rules   RulesCmd   `cmd:"" help:"Print the effective rule-set as YAML."`
	Convert ConvertCmd `cmd:"" help:"Convert values between units."`
}

// RuleFlags are shared by commands that need a rule-set.
type RuleFlags struct {
	Rules  string `help:"YAML rule-set overlaid on the preset." type:"existingfile" env:"NODCCALC_RULES"`
	Preset string `help:"Base rule-set (${presets})." default:"nodc" env:"NODCCALC_PRESET"`
	Scheme string `help:"Input column naming scheme (${schemes}); empty keeps the rule-set columns." env:"NODCCALC_SCHEME"`
}

func main() {
	log.SetFlags(log.LstdFlags)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("nodccalc"),
		kong.Description("Derive DIN, reconciled oxygen and oxygen saturation from flagged oceanographic samples."),
		kong.UsageOnError(),
		kong.Vars{
			"presets":   presetList(),
			"schemes":   schemeList(),
			"nutrients": nutrientList(),
		},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.FatalIfErrorf(kctx.Run())
}
