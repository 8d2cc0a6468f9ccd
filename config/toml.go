package config

import (
	"bytes"
	_ "embed"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/libs/os"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

var appTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("appFileTemplate")
	if appTemplate, err = tmpl.Parse(defaultAppTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFiles writes config.toml through cometbft and renders app.toml
// next to it.
func WriteConfigFiles(config *Config) error {
	cmtconfig.WriteConfigFile(config.RootDir+"/config/config.toml", config.Config)
	return WriteAppConfigFile(config.AppConfigFile(), config.App)
}

// WriteAppConfigFile renders the [app] section using the template and writes it to path.
func WriteAppConfigFile(path string, app *AppConfig) error {
	var buffer bytes.Buffer

	if err := appTemplate.Execute(&buffer, app); err != nil {
		return err
	}

	return os.WriteFile(path, buffer.Bytes(), 0o644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go.
//
//go:embed app.toml.tpl
var defaultAppTemplate string
