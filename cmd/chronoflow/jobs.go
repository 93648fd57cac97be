package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/chronoflow/chronoflow/internal/config"
	"github.com/chronoflow/chronoflow/internal/job"
	"github.com/chronoflow/chronoflow/internal/store"
)

// jobsCmd manages job definition files directly in jobs_dir. This is a
// thin CLI convenience over the filesystem, not a scheduler API — it
// never talks to a running daemon.
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job definition files",
}

var (
	jobsConfigPath string
	jobsFromDB     bool
)

var jobsAddCmd = &cobra.Command{
	Use:   "add <schedule> <command>",
	Short: "Write a new job definition file",
	Args:  cobra.ExactArgs(2),
	Run:   runJobsAdd,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job definition files (or the SQLite audit trail with --from-db)",
	Run:   runJobsList,
}

var jobsRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Delete a job definition file by job_id",
	Args:  cobra.ExactArgs(1),
	Run:   runJobsRemove,
}

func init() {
	jobsCmd.PersistentFlags().StringVarP(&jobsConfigPath, "config", "c", "", "path to configuration file (default: ./config.toml)")
	jobsListCmd.Flags().BoolVar(&jobsFromDB, "from-db", false, "read from the SQLite audit trail instead of jobs_dir")

	jobsCmd.AddCommand(jobsAddCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsRemoveCmd)
}

func loadJobsDir() string {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg.Scheduler.JobsDir
}

func runJobsAdd(cmd *cobra.Command, args []string) {
	schedule, command := args[0], args[1]
	jobsDir := loadJobsDir()

	j := job.Job{
		ID:       "job-" + uuid.New().String(),
		Schedule: schedule,
		Task:     job.Task{Type: job.TaskExecuteCommand, Command: command},
	}
	if err := j.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid job: %v\n", err)
		os.Exit(1)
	}

	data, err := job.Serialize(j)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to serialize job: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(jobsDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create jobs directory: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(jobsDir, j.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write job file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("job added\n")
	fmt.Printf("  job_id:   %s\n", j.ID)
	fmt.Printf("  schedule: %s\n", schedule)
	fmt.Printf("  command:  %s\n", command)
	fmt.Printf("  file:     %s\n", path)
	fmt.Printf("\nstart 'chronoflow serve' to activate this job\n")
}

func runJobsList(cmd *cobra.Command, args []string) {
	if jobsFromDB {
		runJobsListFromDB()
		return
	}

	jobsDir := loadJobsDir()
	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("no job definitions found")
			return
		}
		fmt.Fprintf(os.Stderr, "failed to list jobs directory: %v\n", err)
		os.Exit(1)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(jobsDir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", e.Name(), err)
			continue
		}
		j, err := job.Parse(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", e.Name(), err)
			continue
		}
		printJob(j)
		count++
	}
	if count == 0 {
		fmt.Println("no job definitions found")
		return
	}
	fmt.Printf("total: %d job(s)\n", count)
}

func runJobsListFromDB() {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Store.Enabled {
		fmt.Fprintf(os.Stderr, "store.enabled is false in configuration; nothing to read\n")
		os.Exit(1)
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open audit store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	records, err := s.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read audit store: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Println("audit trail is empty")
		return
	}

	for _, r := range records {
		printJob(r.Job)
		fmt.Printf("  last updated: %s\n", r.UpdatedAt.Format("2006-01-02T15:04:05Z"))
		fmt.Println("-----------------")
	}
	fmt.Printf("total: %d job(s)\n", len(records))
}

func printJob(j job.Job) {
	fmt.Println("-----------------")
	fmt.Printf("job_id:      %s\n", j.ID)
	if j.Description != "" {
		fmt.Printf("description: %s\n", j.Description)
	}
	fmt.Printf("schedule:    %s\n", j.Schedule)
	fmt.Printf("task:        %s\n", j.Task.Type)
	if j.Task.Command != "" {
		fmt.Printf("command:     %s\n", j.Task.Command)
	}
}

func runJobsRemove(cmd *cobra.Command, args []string) {
	jobID := args[0]
	jobsDir := loadJobsDir()

	entries, err := os.ReadDir(jobsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list jobs directory: %v\n", err)
		os.Exit(1)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(jobsDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		j, err := job.Parse(data)
		if err != nil || j.ID != jobID {
			continue
		}
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove job file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("job '%s' removed\n", jobID)
		return
	}

	fmt.Fprintf(os.Stderr, "job '%s' not found\n", jobID)
	fmt.Println("use 'chronoflow jobs list' to see all jobs")
	os.Exit(1)
}

func resolveConfigPath() string {
	if jobsConfigPath == "" {
		return "./config.toml"
	}
	return jobsConfigPath
}
