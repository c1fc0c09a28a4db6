/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, 8080, d.Port)
	assert.EqualValues(t, 256*1024, d.MaxSizeHeaders)
	assert.EqualValues(t, 64*1024*1024, d.MaxSizePostContent)
	assert.EqualValues(t, 16*1024*1024, d.StoreFileUploadInFileAtSize)
	assert.EqualValues(t, 1024*1024, d.GzipInMemoryUpToSize)
	assert.EqualValues(t, 4*1024, d.GzipAutodetectThreshold)
	assert.Equal(t, "application/octet-stream", d.DefaultContentType)
	assert.NoError(t, d.Validate())
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9000
debug = true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.Debug)
	// fields absent from the file keep Defaults' values
	assert.EqualValues(t, 256*1024, cfg.MaxSizeHeaders)
	assert.Equal(t, "application/octet-stream", cfg.DefaultContentType)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedTOMLErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`port = [`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRequiresAPort(t *testing.T) {
	s := Server{}
	err := s.Validate()
	assert.Error(t, err)
}

func TestValidateSecurePortRequiresCertificate(t *testing.T) {
	s := Server{SecurePort: 8443}
	err := s.Validate()
	assert.Error(t, err)

	s.CertificatePath = "/etc/tls/cert.pem"
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsBadBindAddress(t *testing.T) {
	s := Defaults()
	s.BindAddress = "not-an-ip"
	assert.Error(t, s.Validate())

	s.BindAddress = "127.0.0.1"
	assert.NoError(t, s.Validate())
}

func TestLoadRejectsInvalidCrossFieldConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
secure_port = 8443
`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
