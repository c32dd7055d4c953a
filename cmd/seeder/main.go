package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal/client"
	"github.com/antonio-alexander/go-employee-directory/internal/data"

	"github.com/brianvoe/gofakeit"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "generates and loads employee csv batches",
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "write a csv of fake employees",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		output, _ := cmd.Flags().GetString("output")
		prefix, _ := cmd.Flags().GetString("prefix")
		return generate(output, prefix, count)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load [files...]",
	Short: "upload one or more csv files through the service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return load(cmd.Context(), args)
	},
}

func init() {
	generateCmd.Flags().Int("count", 100, "number of employees to generate")
	generateCmd.Flags().String("output", "employees.csv", "output csv file")
	generateCmd.Flags().String("prefix", "emp", "id prefix")
	rootCmd.AddCommand(generateCmd, loadCmd)
}

// alphanumeric strips anything the id/login validation would reject.
func alphanumeric(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, s)
}

func generate(output, prefix string, count int) error {
	gofakeit.Seed(time.Now().UnixNano())
	file, err := os.Create(output)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "login", "name", "salary", "startDate"}); err != nil {
		return err
	}
	start := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		record := []string{
			fmt.Sprintf("%s%05d", alphanumeric(prefix), i),
			strings.ToLower(alphanumeric(name)) + strconv.Itoa(i),
			name,
			strconv.FormatFloat(gofakeit.Price(100, 4000), 'f', 2, 64),
			gofakeit.DateRange(start, end).Format(data.DateFormat),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	fmt.Printf("wrote %d employees to %s\n", count, output)
	return nil
}

func load(ctx context.Context, files []string) error {
	envs := make(map[string]string)
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	client := client.NewClient()
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()
	group, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		group.Go(func() error {
			csvBytes, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			n, err := client.EmployeesUpload(ctx, filepath.Base(file), csvBytes)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			fmt.Printf("%s: uploaded %d employees\n", file, n)
			return nil
		})
	}
	return group.Wait()
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
