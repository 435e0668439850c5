// Package config declares the command-line surface parsed by kong.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/pbtmpl/internal/cmd"
)

type Log struct {
	Level string `help:"Log level: trace, debug, info, warn or error" default:"info" enum:"trace,debug,info,warn,warning,error" env:"PBTMPL_LOG_LEVEL"`
	File  string `help:"Also write logs to this file" type:"path" env:"PBTMPL_LOG_FILE"`
}

type CLI struct {
	Config  string           `help:"Load flag defaults from this json, yaml or toml file" type:"path" env:"PBTMPL_CONFIG"`
	Log     Log              `embed:"" prefix:"log."`
	Version kong.VersionFlag `short:"v" help:"Show version and exit"`

	Generate  cmd.Generate      `cmd:"" default:"withargs" help:"Render templates for schema entities (default command)"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Manage configuration files"`
}
