package cache_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/cache"
	"github.com/antonio-alexander/go-employee-directory/internal/data"

	stashmemory "github.com/antonio-alexander/go-stash/memory"

	"github.com/stretchr/testify/assert"
)

var envs = map[string]string{
	"REDIS_ADDRESS":            "localhost",
	"REDIS_PORT":               "6379",
	"REDIS_TIMEOUT":            "10",
	"CACHE_PRUNE_INTERVAL":     "30",
	"CACHE_SET_READ_TTL":       "10",
	"CACHE_ENABLE_IN_PROGRESS": "false",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

type cacheTest struct {
	cache interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
		cache.Cache
	}
}

func newCacheTest(cacheType string) *cacheTest {
	c := &cacheTest{}
	switch cacheType {
	case "memory":
		c.cache = cache.NewMemory()
	case "redis":
		c.cache = cache.NewRedis()
	case "stash-memory":
		stash := stashmemory.New()
		_ = stash.Configure(envs)
		c.cache = cache.NewStash(stash)
	}
	return c
}

func (c *cacheTest) TestCache(t *testing.T) {
	var search data.EmployeeSearch

	employees := []*data.Employee{
		{Id: "e0001", Login: internal.GenerateId(), Name: "one",
			Salary: 100, StartDate: data.NewDate(2001, time.November, 16)},
		{Id: "e0002", Login: internal.GenerateId(), Name: "two",
			Salary: 200, StartDate: data.NewDate(2002, time.December, 1)},
		{Id: "e0003", Login: internal.GenerateId(), Name: "three",
			Salary: 300, StartDate: data.NewDate(2003, time.January, 20)},
	}
	ctx := context.TODO()

	//clear cache
	err := c.cache.Clear(ctx)
	assert.Nil(t, err)

	// an uncached employee is a miss
	employeeRead, err := c.cache.EmployeeRead(ctx, employees[0].Id)
	assert.NotNil(t, err)
	assert.Nil(t, employeeRead)

	// write employees
	err = c.cache.EmployeesWrite(ctx, search, employees...)
	assert.Nil(t, err)

	// read individual employees
	for _, employee := range employees {
		employeeRead, err := c.cache.EmployeeRead(ctx, employee.Id)
		assert.Nil(t, err)
		assert.Equal(t, employee, employeeRead)
	}

	// an uncached search is a miss
	minSalary := float64(150)
	search.MinSalary = &minSalary
	_, err = c.cache.EmployeesRead(ctx, search)
	assert.NotNil(t, err)

	// write search
	err = c.cache.EmployeesWrite(ctx, search, employees[1], employees[2])
	assert.Nil(t, err)

	// read employees
	employeesRead, err := c.cache.EmployeesRead(ctx, search)
	assert.Nil(t, err)
	assert.Len(t, employeesRead, 2)
	assert.Contains(t, employeesRead, employees[1])
	assert.Contains(t, employeesRead, employees[2])

	// delete employee [1]
	err = c.cache.EmployeesDelete(ctx, employees[1].Id)
	assert.Nil(t, err)

	// attempt to read employee [1]
	employeeRead, err = c.cache.EmployeeRead(ctx, employees[1].Id)
	assert.NotNil(t, err)
	assert.Nil(t, employeeRead)

	// the search no longer resolves completely
	_, err = c.cache.EmployeesRead(ctx, search)
	assert.NotNil(t, err)

	// clear empties everything
	err = c.cache.Clear(ctx)
	assert.Nil(t, err)
	employeeRead, err = c.cache.EmployeeRead(ctx, employees[0].Id)
	assert.NotNil(t, err)
	assert.Nil(t, employeeRead)
}

func (c *cacheTest) TestSearchOrder(t *testing.T) {
	var employees []*data.Employee

	ctx := context.TODO()
	for i := 0; i < 10; i++ {
		employees = append(employees, &data.Employee{
			Id: fmt.Sprintf("e%04d", i), Login: internal.GenerateId(),
			Name:      fmt.Sprintf("employee %d", i),
			Salary:    float64(100 * (i + 1)),
			StartDate: data.NewDate(2001, time.November, 16),
		})
	}
	search := data.EmployeeSearch{Sort: "id-asc"}

	err := c.cache.Clear(ctx)
	assert.Nil(t, err)

	// a cache hit preserves the order the result was written with
	err = c.cache.EmployeesWrite(ctx, search, employees...)
	assert.Nil(t, err)
	employeesRead, err := c.cache.EmployeesRead(ctx, search)
	assert.Nil(t, err)
	if assert.Len(t, employeesRead, len(employees)) {
		for i, employee := range employees {
			assert.Equal(t, employee.Id, employeesRead[i].Id)
		}
	}

	// re-writing the key supersedes the previous order
	search.Sort = "salary-desc"
	reversed := make([]*data.Employee, 0, len(employees))
	for i := len(employees) - 1; i >= 0; i-- {
		reversed = append(reversed, employees[i])
	}
	err = c.cache.EmployeesWrite(ctx, search, reversed...)
	assert.Nil(t, err)
	employeesRead, err = c.cache.EmployeesRead(ctx, search)
	assert.Nil(t, err)
	if assert.Len(t, employeesRead, len(reversed)) {
		for i, employee := range reversed {
			assert.Equal(t, employee.Id, employeesRead[i].Id)
		}
	}
}

func testCache(t *testing.T, cacheType string) {
	c := newCacheTest(cacheType)

	err := c.cache.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure cache")
	}
	err = c.cache.Open(context.TODO())
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open cache")
	}
	defer func() {
		if err := c.cache.Close(context.TODO()); err != nil {
			t.Logf("error while closing cache: %s", err)
		}
	}()
	t.Run("Cache", c.TestCache)
	t.Run("Search Order", c.TestSearchOrder)
}

func TestCacheMemory(t *testing.T) {
	testCache(t, "memory")
}

func TestCacheStashMemory(t *testing.T) {
	testCache(t, "stash-memory")
}

func TestCacheRedis(t *testing.T) {
	if skip, _ := strconv.ParseBool(envs["TEST_REDIS_SKIP"]); skip {
		t.Skip("redis not available")
	}
	if envs["TEST_REDIS"] == "" {
		t.Skip("set TEST_REDIS to run against a live redis")
	}
	testCache(t, "redis")
}

func TestCacheMemoryInProgress(t *testing.T) {
	inProgressEnvs := make(map[string]string)
	for k, v := range envs {
		inProgressEnvs[k] = v
	}
	inProgressEnvs["CACHE_ENABLE_IN_PROGRESS"] = "true"
	c := cache.NewMemory()
	err := c.Configure(inProgressEnvs)
	assert.Nil(t, err)
	ctx := context.TODO()
	err = c.Open(ctx)
	assert.Nil(t, err)
	defer func() {
		_ = c.Close(context.TODO())
	}()

	// the first miss marks the read in progress
	_, err = c.EmployeeRead(ctx, "e0001")
	assert.Equal(t, cache.ErrEmployeeReadSet, err)

	// a second miss within the ttl sees the in-progress marker
	_, err = c.EmployeeRead(ctx, "e0001")
	assert.Equal(t, cache.ErrEmployeeReadAlreadySet, err)

	// writing the employee clears the marker
	err = c.EmployeesWrite(ctx, data.EmployeeSearch{}, &data.Employee{
		Id: "e0001", Login: "hpotter", Name: "Harry Potter",
	})
	assert.Nil(t, err)
	employee, err := c.EmployeeRead(ctx, "e0001")
	assert.Nil(t, err)
	assert.Equal(t, "e0001", employee.Id)
}
