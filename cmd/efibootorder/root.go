/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"terraform-provider-efibootorder/internal/bmc"
	"terraform-provider-efibootorder/internal/bootorder"
	"terraform-provider-efibootorder/internal/remediation"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/hashicorp/terraform-plugin-log/tfsdklog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stmcginnis/gofish/redfish"
)

const (
	cfgFileType = "yaml"
	envPrefix   = "EFIBOOTORDER"
)

type app struct {
	v       *viper.Viper
	cfgFile string

	stdout io.Writer
	stderr io.Writer

	exitCode int
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "efibootorder [flags] HOST...",
		Short: "check and fix the EFI boot order of hosts through their BMC",
		Long: `Reads the persisted boot order of every host from its Redfish management
controller and checks that the PXE network entry comes before the hard disk,
which comes before the EFI shell. Non-compliant hosts are reported with a diff
of the corrected order. With --fix the corrected order is written, the host is
reset and the order is read back for verification.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	defaults := bmc.DefaultConfig()
	flags := cmd.Flags()

	flags.StringVarP(&a.cfgFile, "config", "c", "", "alternative path to config file")
	flags.StringP("env-file", "", "", "dotenv file loaded before the configuration is resolved")
	flags.StringP("log-level", "", "warn", "the application log level (trace, debug, info, warn, error)")

	flags.BoolP("fix", "f", false, "write the corrected boot order and reset the host (default is to report only)")
	flags.IntP("parallel", "p", 1, "number of hosts processed at the same time")
	flags.StringP("metrics-file", "", "", "write Prometheus metrics of the run to this file")

	flags.StringP("credentials", "", bmc.DefaultCredentialsFile, "file containing user:password for the BMCs")
	flags.StringP("username", "", "", "BMC user name, overrides the credentials file")
	flags.StringP("password", "", "", "BMC password, overrides the credentials file")

	flags.StringP("domain", "", defaults.Domain, "domain appended to host names not containing the marker")
	flags.StringP("marker", "", defaults.Marker, "substring identifying management network host names")
	flags.BoolP("insecure", "", defaults.Insecure, "skip verification of BMC certificates")
	flags.DurationP("timeout", "", defaults.Timeout, "timeout of every request to a BMC")

	flags.StringP("profile", "", defaults.Profile, "where the boot order is stored (oem or standard)")
	flags.StringP("system", "", defaults.SystemPath, "computer system resource")
	flags.StringP("oem-path", "", defaults.OemPath, "OEM boot order resource of the oem profile")
	flags.StringP("oem-key", "", defaults.OemKey, "property holding the boot order in the OEM resource")
	flags.StringP("reset-type", "", string(defaults.ResetType), "reset type used after writing the boot order")
	flags.DurationP("reset-timeout", "", 0, "wait up to this long for the host to be powered on after reset")

	flags.StringP("network-match", "", bootorder.DefaultNetworkMatch, "substring identifying the network boot entry")
	flags.StringP("disk-match", "", bootorder.DefaultDiskMatch, "substring identifying the disk boot entry")
	flags.StringP("shell-match", "", bootorder.DefaultShellMatch, "substring identifying the EFI shell boot entry")

	_ = a.v.BindPFlags(flags)
	_ = a.v.BindPFlag("rules.network", flags.Lookup("network-match"))
	_ = a.v.BindPFlag("rules.disk", flags.Lookup("disk-match"))
	_ = a.v.BindPFlag("rules.shell", flags.Lookup("shell-match"))

	return cmd
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if envFile := a.v.GetString("env-file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("unable to load env file %s: %w", envFile, err)
		}
	}

	a.v.SetConfigType(cfgFileType)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("config file path set explicitly, but unreadable: %w", err)
		}
		return nil
	}

	a.v.SetConfigName("efibootorder")
	a.v.AddConfigPath("/etc/efibootorder")
	a.v.AddConfigPath("$HOME/.efibootorder")
	a.v.AddConfigPath(".")
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("config file %s unreadable: %w", a.v.ConfigFileUsed(), err)
		}
	}

	return nil
}

// rules builds the rule table from every rules.<class> key of flags, environment
// and config file.
func (a *app) rules() (bootorder.RuleSet, error) {
	fragments := map[bootorder.DeviceClass]string{}
	for _, key := range a.v.AllKeys() {
		name, ok := strings.CutPrefix(key, "rules.")
		if !ok {
			continue
		}
		class, err := bootorder.DeviceClassFromString(name)
		if err != nil {
			return nil, fmt.Errorf("invalid key %s: %w", key, err)
		}
		fragments[class] = a.v.GetString(key)
	}

	return bootorder.NewSubstringRules(fragments)
}

func (a *app) credentials() (bmc.Credentials, error) {
	username := a.v.GetString("username")
	password := a.v.GetString("password")
	if username != "" && password != "" {
		return bmc.Credentials{Username: username, Password: password}, nil
	}

	return bmc.LoadCredentials(a.v.GetString("credentials"))
}

func (a *app) clientConfig() bmc.Config {
	cfg := bmc.DefaultConfig()
	cfg.Domain = a.v.GetString("domain")
	cfg.Marker = a.v.GetString("marker")
	cfg.Insecure = a.v.GetBool("insecure")
	cfg.Timeout = a.v.GetDuration("timeout")
	cfg.Profile = a.v.GetString("profile")
	cfg.SystemPath = a.v.GetString("system")
	cfg.OemPath = a.v.GetString("oem-path")
	cfg.OemKey = a.v.GetString("oem-key")
	cfg.ResetType = redfish.ResetType(a.v.GetString("reset-type"))
	cfg.ResetTimeout = a.v.GetDuration("reset-timeout")
	return cfg
}

func (a *app) run(cmd *cobra.Command, hosts []string) error {
	level := hclog.LevelFromString(a.v.GetString("log-level"))
	if level == hclog.NoLevel {
		return fmt.Errorf("unparsable log level: %s", a.v.GetString("log-level"))
	}

	ctx := tfsdklog.NewRootProviderLogger(cmd.Context(),
		tfsdklog.WithLogName("efibootorder"),
		tfsdklog.WithLevel(level),
		tfsdklog.WithStderrFromInit(),
		tfsdklog.WithoutLocation(),
	)
	if used := a.v.ConfigFileUsed(); used != "" {
		tflog.Info(ctx, "Read config file", map[string]interface{}{"config-file": used})
	}

	rules, err := a.rules()
	if err != nil {
		return err
	}

	creds, err := a.credentials()
	if err != nil {
		return err
	}

	client, err := bmc.New(creds, a.clientConfig())
	if err != nil {
		return err
	}

	controller, err := remediation.New(client, remediation.Options{
		Rules: rules,
		Fix:   a.v.GetBool("fix"),
		Out:   a.stdout,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	report := controller.RunParallel(ctx, hosts, a.v.GetInt("parallel"))

	for _, res := range report.Results {
		for _, warning := range res.Warnings {
			fmt.Fprintf(a.stderr, "warning: %s\n", warning)
		}
		if res.Outcome.Fatal() && res.Err != nil {
			fmt.Fprintf(a.stderr, "error: %s\n", res.Err)
		}
	}
	tflog.Info(ctx, "run finished", map[string]interface{}{
		"summary":  report.Summary(),
		"duration": time.Since(started).String(),
	})

	if path := a.v.GetString("metrics-file"); path != "" {
		metrics := remediation.NewMetrics()
		metrics.Observe(report)
		if err := metrics.WriteToTextfile(path); err != nil {
			return fmt.Errorf("unable to write metrics: %w", err)
		}
	}

	a.exitCode = report.ExitCode()
	return nil
}
