package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/antonio-alexander/go-employee-directory/internal/cache"
	"github.com/antonio-alexander/go-employee-directory/internal/client"
	"github.com/antonio-alexander/go-employee-directory/internal/data"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	_ = godotenv.Load()
	args := os.Args[1:]
	envs := make(map[string]string)
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	fmt.Printf("client: go-employee-directory v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	//create cache
	cache := cache.NewMemory()
	if err := cache.Configure(envs); err != nil {
		return err
	}

	//create client
	client := client.NewClient(cache)
	if err := client.Configure(envs); err != nil {
		return err
	}
	ctx := context.Background()
	if err := cache.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(context.Background()); err != nil {
			fmt.Printf("error while closing cache: %s\n", err)
		}
	}()
	if err := client.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// execute command
	command, id := envs["COMMAND"], envs["EMPLOYEE_ID"]
	switch command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employee_read":
		employee, err := client.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employees_search":
		var search data.EmployeeSearch

		employees, err := client.EmployeesSearch(ctx, search)
		if err != nil {
			return err
		}
		return printJson(&data.Results{Results: employees})
	case "employee_delete":
		if err := client.EmployeeDelete(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted employee: %s\n", id)
	case "employees_upload":
		file := envs["UPLOAD_FILE"]
		csvBytes, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		n, err := client.EmployeesUpload(ctx, filepath.Base(file), csvBytes)
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %d employees\n", n)
	case "cache_counters_read":
		cacheCounters, err := client.CacheCountersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(cacheCounters)
	case "timers_read":
		timers, err := client.TimersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(timers)
	}
	return nil
}
