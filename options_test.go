package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/alexflint/go-arg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptionsDefaults(t *testing.T) {
	opts, _, err := loadOptions([]string{"-i", "10.0.0.1", "--dry-run", "-f", "pairs.txt"})
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", opts.IP)
	assert.Equal(t, "pairs.txt", opts.File)
	assert.True(t, opts.DryRun)
	assert.Equal(t, "backup.json", opts.Backup)
	assert.Equal(t, 30, opts.RequestTimeout)
	assert.Equal(t, "sel-", opts.SwitchSelectorPrefix)
	assert.Equal(t, "Leaf", opts.InterfaceProfilePrefix)
	assert.Equal(t, "1", opts.PodID)
}

func TestLoadOptionsConfigFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "migrate.yaml")
	config := []byte(`ip: apic1.example.com
username: file-user
interface_profile_prefix: Prof
request_timeout: 10
skip_snapshot: true
`)
	require.NoError(t, ioutil.WriteFile(fn, config, 0600))

	opts, _, err := loadOptions([]string{"-c", fn, "-u", "cli-user"})
	require.NoError(t, err)
	assert.Equal(t, "apic1.example.com", opts.IP)
	assert.Equal(t, "cli-user", opts.Username)
	assert.Equal(t, "Prof", opts.InterfaceProfilePrefix)
	assert.Equal(t, 10, opts.RequestTimeout)
	assert.True(t, opts.SkipSnapshot)
	assert.Equal(t, "migration.txt", opts.File)
}

func TestLoadOptionsEnvironment(t *testing.T) {
	t.Setenv("FABRIC_MIGRATE_PASSWORD", "from-env")
	t.Setenv("FABRIC_MIGRATE_VPC_GROUP_PREFIX", "vpcgrp-")

	opts, _, err := loadOptions([]string{"-i", "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, "from-env", opts.Password)
	assert.Equal(t, "vpcgrp-", opts.VPCGroupPrefix)
}

func TestLoadOptionsPrecedence(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "migrate.yaml")
	config := []byte(`interface_profile_prefix: Prof
dry_run: true
login_attempts: 9
`)
	require.NoError(t, ioutil.WriteFile(fn, config, 0600))
	t.Setenv("FABRIC_MIGRATE_BLOCK_PREFIX", "env-blk-")

	tests := []struct {
		name          string
		args          []string
		prefix        string
		dryRun        bool
		loginAttempts int
		blockPrefix   string
	}{
		{
			name:          "config over defaults",
			args:          []string{"-c", fn},
			prefix:        "Prof",
			dryRun:        true,
			loginAttempts: 9,
			blockPrefix:   "env-blk-",
		},
		{
			name:          "flag equal to default wins over config",
			args:          []string{"-c", fn, "--interface-profile-prefix", "Leaf", "--block-prefix", "blk-"},
			prefix:        "Leaf",
			dryRun:        true,
			loginAttempts: 9,
			blockPrefix:   "blk-",
		},
		{
			name:          "bool flag turned off over config",
			args:          []string{"-c", fn, "--dry-run=false", "--login-attempts", "5"},
			prefix:        "Prof",
			dryRun:        false,
			loginAttempts: 5,
			blockPrefix:   "env-blk-",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _, err := loadOptions(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.prefix, opts.InterfaceProfilePrefix)
			assert.Equal(t, tt.dryRun, opts.DryRun)
			assert.Equal(t, tt.loginAttempts, opts.LoginAttempts)
			assert.Equal(t, tt.blockPrefix, opts.BlockPrefix)
			assert.Equal(t, fn, opts.Config)
		})
	}
}

func TestLoadOptionsErrors(t *testing.T) {
	_, _, err := loadOptions([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	_, _, err = loadOptions([]string{"--help"})
	assert.Equal(t, arg.ErrHelp, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "Version "+Version+" local build", Options{}.Version())
}
