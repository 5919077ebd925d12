package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"github.com/hashicorp/hcl/hcl/ast"
)

// profile is one named connection in a profile file:
//
//	profile "dev" {
//	  dsn          = "file:dev.db"
//	  user         = "scott"
//	  password     = "tiger"
//	  handle_limit = 256
//	  time_zone    = "Europe/Berlin"
//	}
type profile struct {
	Name        string `hcl:"-"`
	DSN         string `hcl:"dsn"`
	User        string `hcl:"user"`
	Password    string `hcl:"password"`
	TimeZone    string `hcl:"time_zone"`
	HandleLimit int    `hcl:"handle_limit"`
	MaxTextSize int    `hcl:"max_text_size"`
}

func (p *profile) location() (*time.Location, error) {
	if p.TimeZone == "" {
		return nil, nil
	}
	return time.LoadLocation(p.TimeZone)
}

func loadProfiles(path string) (map[string]*profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseProfiles(f)
}

func parseProfiles(r io.Reader) (map[string]*profile, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	root, err := hcl.Parse(buf.String())
	if err != nil {
		return nil, fmt.Errorf("error parsing: %s", err)
	}
	list, ok := root.Node.(*ast.ObjectList)
	if !ok {
		return nil, fmt.Errorf("error parsing: root should be an object")
	}
	if err := checkHCLKeys(list, []string{"profile"}); err != nil {
		return nil, err
	}

	out := make(map[string]*profile)
	for _, item := range list.Filter("profile").Items {
		if len(item.Keys) != 1 {
			return nil, fmt.Errorf("profile: expected exactly one name")
		}
		name := item.Keys[0].Token.Value().(string)
		if _, ok := out[name]; ok {
			return nil, fmt.Errorf("profile '%s' defined more than once", name)
		}
		body, ok := item.Val.(*ast.ObjectType)
		if !ok {
			return nil, fmt.Errorf("profile '%s': should be an object", name)
		}
		valid := []string{"dsn", "user", "password", "time_zone", "handle_limit", "max_text_size"}
		if err := checkHCLKeys(body.List, valid); err != nil {
			return nil, multierror.Prefix(err, fmt.Sprintf("'%s' ->", name))
		}

		p := &profile{}
		if err := hcl.DecodeObject(p, item.Val); err != nil {
			return nil, fmt.Errorf("profile '%s': %v", name, err)
		}
		p.Name = name
		out[name] = p
	}
	return out, nil
}

func checkHCLKeys(list *ast.ObjectList, valid []string) error {
	validMap := make(map[string]struct{}, len(valid))
	for _, v := range valid {
		validMap[v] = struct{}{}
	}

	var result error
	for _, item := range list.Items {
		key := item.Keys[0].Token.Value().(string)
		if _, ok := validMap[key]; !ok {
			result = multierror.Append(result, fmt.Errorf("invalid key: %s", key))
		}
	}
	return result
}
