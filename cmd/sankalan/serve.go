/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redhat-data-and-ai/sankalan/internal/httpapi/server"
	"github.com/redhat-data-and-ai/sankalan/internal/periodicjobs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(appEnv)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if app.config.Warmup.Enabled {
			if err := startWarmup(ctx, app); err != nil {
				return err
			}
		}

		return server.NewAPIServer(app.config, app.queries).Start()
	},
}

func startWarmup(ctx context.Context, app *application) error {
	mgr := periodicjobs.NewPeriodicTaskManager()
	periodicjobs.NewReportWarmupJob(app.reports, app.config.Warmup).AddToPeriodicTaskManager(mgr)

	logrus.WithFields(logrus.Fields{
		"interval":     app.config.Warmup.Interval,
		"lookbackDays": app.config.Warmup.LookbackDays,
	}).Info("starting report warmup")
	return mgr.RunAll(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
