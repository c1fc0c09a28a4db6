/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

// Command exampleserver wires a config file, a hook table, and the
// connection engine together, in the spirit of the teacher's th/cli
// test-harness packages but as a runnable program rather than test
// scaffolding.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hookserver/webd"
	"github.com/hookserver/webd/internal/config"
	"github.com/hookserver/webd/internal/log"
	"github.com/hookserver/webd/mux"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (optional; defaults are used otherwise)")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "exampleserver:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger, err := log.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "exampleserver: building logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	srv := webd.NewServer(cfg, logger)

	if err := srv.Handle(mux.Hook{Protocols: mux.HTTP | mux.HTTPS}, webd.HandlerFunc(indexHandler)); err != nil {
		logger.Errorf("registering index hook: %v", err)
		os.Exit(1)
	}
	if err := srv.Handle(mux.Hook{Path: "/files", SpecificPath: false, Protocols: mux.HTTP | mux.HTTPS}, webd.HandlerFunc(filesHandler)); err != nil {
		logger.Errorf("registering files hook: %v", err)
		os.Exit(1)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Infof("shutting down")
		srv.Stop(false, true)
	}()

	logger.Infof("listening on port %d", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != webd.ErrServerClosed {
		logger.Errorf("serve: %v", err)
		os.Exit(1)
	}
}

func indexHandler(r *webd.Request) (*webd.Response, error) {
	return webd.HTMLResponse(webd.Tag{
		Name: "html",
		Children: []webd.Tag{
			{Name: "body", Children: []webd.Tag{
				{Name: "h1", Text: "webd example server"},
				{Name: "p", Text: "rest url: " + r.RestURL},
			}},
		},
	}), nil
}

func filesHandler(r *webd.Request) (*webd.Response, error) {
	name := r.RestURL
	if name == "" {
		return nil, webd.NewStatusError(404, "file not found")
	}
	resp, err := webd.FileResponse("."+name, "")
	if err != nil {
		return nil, webd.NewStatusError(404, "file not found")
	}
	return resp, nil
}
