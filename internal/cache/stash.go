package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/antonio-alexander/go-employee-directory/internal"
	"github.com/antonio-alexander/go-employee-directory/internal/data"
	"github.com/antonio-alexander/go-employee-directory/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

type cachedSearch struct {
	Ids []string `json:"ids"`
}

func (c *cachedSearch) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *cachedSearch) UnmarshalBinary(bytes []byte) error {
	return json.Unmarshal(bytes, c)
}

type stashCache struct {
	logger utilities.Logger
	stash  interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Error(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Error(ctx, format, v...)
	}
}

func (c *stashCache) Trace(ctx context.Context, format string, v ...any) {
	if c.logger != nil {
		c.logger.Trace(ctx, format, v...)
	}
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Initialize()
	}
	return nil
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, id string) (*data.Employee, error) {
	employee := &data.Employee{}
	if err := c.Stasher.Read(id, employee); err != nil {
		c.Trace(ctx, "cache miss for employee: %s", id)
		return nil, ErrEmployeeNotCached
	}
	c.Trace(ctx, "cache hit for employee: %s", id)
	return employee, nil
}

func (c *stashCache) EmployeesRead(ctx context.Context, search data.EmployeeSearch) ([]*data.Employee, error) {
	searchKey, err := search.ToKey()
	if err != nil {
		return nil, err
	}
	cachedSearch := &cachedSearch{}
	if err := c.Stasher.Read(searchKey, cachedSearch); err != nil {
		c.Trace(ctx, "cache miss for employee search: %s", searchKey)
		return nil, ErrEmployeeSearchNotCached
	}
	employees := make([]*data.Employee, 0, len(cachedSearch.Ids))
	for _, id := range cachedSearch.Ids {
		employee := &data.Employee{}
		if err := c.Stasher.Read(id, employee); err != nil {
			//KIM: a partial search is worse than a miss, so if any
			// member is gone the search key is invalidated
			c.Trace(ctx, "cache miss for employee search: %s", searchKey)
			if err := c.Stasher.Delete(searchKey); err != nil {
				c.Error(ctx, "error while deleting search key (%s): %s",
					searchKey, err)
			}
			return nil, errors.New("employee not cached")
		}
		employees = append(employees, employee)
	}
	c.Trace(ctx, "cache hit for employee search: %s", searchKey)
	return employees, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, search data.EmployeeSearch, employees ...*data.Employee) error {
	searchKey, err := search.ToKey()
	if err != nil {
		c.Error(ctx, "error while creating search key: %s", err)
		return err
	}
	cachedSearch := &cachedSearch{}
	for _, employee := range employees {
		cachedSearch.Ids = append(cachedSearch.Ids, employee.Id)
	}
	if _, err := c.Stasher.Write(searchKey, cachedSearch); err != nil {
		c.Error(ctx, "error while writing search: %s", err)
		return err
	}
	c.Trace(ctx, "cached employees search: %s", searchKey)
	for _, employee := range employees {
		if _, err := c.Stasher.Write(employee.Id, employee); err != nil {
			// a failed member write just makes the caching incomplete
			c.Error(ctx, "error while writing employee (%s): %s", employee.Id, err)
		}
		c.Trace(ctx, "cached employee: %s", employee.Id)
	}
	return nil
}

func (c *stashCache) EmployeesDelete(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := c.Stasher.Delete(id); err != nil {
			c.Error(ctx, "error while deleting employee: %s", id)
			continue
		}
		c.Trace(ctx, "evicted cached employee: %s", id)
	}
	//KIM: a search key can't be directly invalidated here, but reading
	// it with a missing member invalidates it automatically
	return nil
}
