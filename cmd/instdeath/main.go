// Package main is the entry point for the inst-death CLI
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrletourneau/inst-death/config"
	"github.com/mrletourneau/inst-death/internal/als"
	"github.com/mrletourneau/inst-death/internal/domain"
	"github.com/mrletourneau/inst-death/internal/hapax"
	"github.com/mrletourneau/inst-death/internal/server"
)

var version = "dev"

var (
	outputDir   string
	midiChannel int
	splitSize   int
	configPath  string
	serverPort  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inst-death",
	Short: "Generate Squarp Hapax instrument definitions from Ableton Live Sets",
	Long: `inst-death reads an Ableton Live Set (.als), finds the instrument racks
and drum racks on its MIDI tracks, and renders Hapax instrument definition
files: macro names become CC assignments, drum pads become drum lanes.

Examples:
  inst-death tracks project.als
  inst-death convert project.als -o defs/ -c 3
  inst-death serve --port 8080`,
	Version: version,
}

var tracksCmd = &cobra.Command{
	Use:   "tracks <project.als>",
	Short: "List the exportable tracks of a project as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runTracks,
}

var convertCmd = &cobra.Command{
	Use:   "convert <project.als>",
	Short: "Write a definition file for every exportable track",
	Long: `Extracts every instrument rack and drum rack and writes one definition
file per export unit to the output directory. Drum racks are split into
consecutive pad groups, one definition per group.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	convertCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for definition files")
	convertCmd.Flags().IntVarP(&midiChannel, "channel", "c", 1, "MIDI output channel (1-16)")
	convertCmd.Flags().IntVar(&splitSize, "split-size", hapax.DefaultGroupSize, "Pads per drum definition")

	serveCmd.Flags().StringVarP(&serverPort, "port", "p", "", "Server port (overrides config)")
	serveCmd.Flags().StringVar(&configPath, "config", "./config/config.yaml", "Path to config file")

	rootCmd.AddCommand(tracksCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
}

func parseProject(path string) ([]domain.Track, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	tracks, err := als.Parse(raw)
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func runTracks(cmd *cobra.Command, args []string) error {
	tracks, err := parseProject(args[0])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	tracks, err := parseProject(args[0])
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.New("no instrument racks or drum racks found")
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	written := 0
	for _, track := range tracks {
		if track.IsInstrument() {
			text, err := hapax.Instrument(track, midiChannel)
			if err != nil {
				return err
			}
			if err := writeDefinition(track.Name, 0, text); err != nil {
				return err
			}
			written++
			continue
		}

		groups := hapax.GroupPads(track.Pads, splitSize)
		for i, group := range groups {
			part := 0
			if len(groups) > 1 {
				part = i + 1
			}
			text, err := hapax.Drum(track, midiChannel, group, part)
			if err != nil {
				return err
			}
			if err := writeDefinition(track.Name, part, text); err != nil {
				return err
			}
			written++
		}
	}

	fmt.Printf("Wrote %d definition file(s) to %s\n", written, outputDir)
	return nil
}

func writeDefinition(trackName string, part int, text string) error {
	path := filepath.Join(outputDir, hapax.Filename(trackName, part))
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("  %s\n", path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	port := serverPort
	if port == "" {
		port = cfg.Server.Port
	}

	slog.Info("Starting Hapax definition generator API server", "port", port)
	return server.New(cfg).Start(port)
}
