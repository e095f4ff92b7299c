package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh/terminal"
)

const Version = "0.3.0"

// Rev is set at build time with -ldflags "-X main.Rev=<sha>".
var Rev string

const envPrefix = "FABRIC_MIGRATE"

// Options : CLI args, optionally backed by a config file and environment
type Options struct {
	IP                 string `arg:"-i" help:"APIC IP address"`
	Username           string `arg:"-u" help:"username"`
	Password           string `arg:"-p" help:"password"`
	File               string `arg:"-f" help:"migration file of source,destination node IDs"`
	Config             string `arg:"-c" help:"config file (yaml, toml or json)"`
	Backup             string `arg:"-b" help:"backup file for objects read from the source nodes"`
	LogFile            string `arg:"--log-file" help:"rotating JSON log file, empty to disable"`
	DryRun             bool   `arg:"--dry-run" help:"read and plan only, commit nothing"`
	SkipSnapshot       bool   `arg:"--skip-snapshot" help:"do not trigger a config export before migrating"`
	Verbose            bool   `arg:"-v"`
	RequestTimeout     int    `arg:"--request-timeout" help:"HTTP request timeout in seconds"`
	LoginRetryInterval int    `arg:"--login-retry-interval" help:"login retry interval in seconds"`
	LoginAttempts      int    `arg:"--login-attempts" help:"login attempts before giving up"`
	PodID              string `arg:"--pod-id" help:"pod for destination nodes not yet registered"`

	SwitchProfilePrefix    string `arg:"--switch-profile-prefix"`
	SwitchSelectorPrefix   string `arg:"--switch-selector-prefix"`
	BlockPrefix            string `arg:"--block-prefix"`
	InterfaceProfilePrefix string `arg:"--interface-profile-prefix"`
	VPCGroupPrefix         string `arg:"--vpc-group-prefix"`
}

// Description : App description for CLI interface
func (Options) Description() string {
	return "Migrate ACI access policies and static paths between leaf switches."
}

// Version : App version string for CLI interface
func (Options) Version() string {
	if Rev == "" {
		return fmt.Sprintf("Version %s local build", Version)
	}
	return fmt.Sprintf("Version %s Revision %s", Version, Rev)
}

func defaultOptions() Options {
	return Options{
		File:                   "migration.txt",
		Backup:                 "backup.json",
		LogFile:                "fabric-migrate.log",
		RequestTimeout:         30,
		LoginRetryInterval:     60,
		LoginAttempts:          5,
		PodID:                  "1",
		SwitchSelectorPrefix:   "sel-",
		BlockPrefix:            "blk-",
		InterfaceProfilePrefix: "Leaf",
		VPCGroupPrefix:         "vpc-",
	}
}

// loadOptions layers the command line over the config file and
// environment, which in turn override the built-in defaults. The first
// parse only locates the config file.
func loadOptions(args []string) (Options, *arg.Parser, error) {
	cfg := arg.Config{Program: "fabric-migrate"}
	opts := defaultOptions()
	p, err := arg.NewParser(cfg, &opts)
	if err != nil {
		return opts, nil, err
	}
	if err := p.Parse(args); err != nil {
		return opts, p, err
	}
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if opts.Config != "" {
		v.SetConfigFile(opts.Config)
		if err := v.ReadInConfig(); err != nil {
			return opts, p, errors.Wrapf(err, "read config file %s", opts.Config)
		}
	}
	opts = defaultOptions()
	opts.merge(v)
	if p, err = arg.NewParser(cfg, &opts); err != nil {
		return opts, nil, err
	}
	if err := p.Parse(args); err != nil {
		return opts, p, err
	}
	return opts, p, nil
}

func mergeString(dst *string, v *viper.Viper, key string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func mergeInt(dst *int, v *viper.Viper, key string) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

func mergeBool(dst *bool, v *viper.Viper, key string) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

// merge overrides o with every key the config file or environment sets.
func (o *Options) merge(v *viper.Viper) {
	mergeString(&o.IP, v, "ip")
	mergeString(&o.Username, v, "username")
	mergeString(&o.Password, v, "password")
	mergeString(&o.File, v, "file")
	mergeString(&o.Backup, v, "backup")
	mergeString(&o.LogFile, v, "log_file")
	mergeString(&o.PodID, v, "pod_id")
	mergeBool(&o.DryRun, v, "dry_run")
	mergeBool(&o.SkipSnapshot, v, "skip_snapshot")
	mergeBool(&o.Verbose, v, "verbose")
	mergeInt(&o.RequestTimeout, v, "request_timeout")
	mergeInt(&o.LoginRetryInterval, v, "login_retry_interval")
	mergeInt(&o.LoginAttempts, v, "login_attempts")
	mergeString(&o.SwitchProfilePrefix, v, "switch_profile_prefix")
	mergeString(&o.SwitchSelectorPrefix, v, "switch_selector_prefix")
	mergeString(&o.BlockPrefix, v, "block_prefix")
	mergeString(&o.InterfaceProfilePrefix, v, "interface_profile_prefix")
	mergeString(&o.VPCGroupPrefix, v, "vpc_group_prefix")
}

func input(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s ", prompt)
	input, _ := reader.ReadString('\n')
	return strings.Trim(input, "\r\n")
}

func getOptions() Options {
	opts, p, err := loadOptions(os.Args[1:])
	switch {
	case err == arg.ErrHelp:
		p.WriteHelp(os.Stdout)
		os.Exit(0)
	case err == arg.ErrVersion:
		fmt.Println(opts.Version())
		os.Exit(0)
	case err != nil && p != nil:
		p.Fail(err.Error())
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.IP == "" {
		opts.IP = input("APIC IP:")
	}
	if opts.Username == "" {
		opts.Username = input("Username:")
	}
	if opts.Password == "" {
		fmt.Print("Password: ")
		pwd, _ := terminal.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		opts.Password = string(pwd)
	}
	return opts
}
