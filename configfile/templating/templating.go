// Package templating is used to allow the configuration files to have
// some dynamic configuration to them.
// The env, default and required helpers follow
// https://github.com/tnozicka/goenvtemplator
package templating

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"text/template"
)

// OptionalString is the result of env. A missing variable holds nil so
// default can tell it apart from an empty one.
type OptionalString struct {
	ptr *string
}

var funcMap = template.FuncMap{
	"env":      Env,
	"default":  Default,
	"required": Required,
	"hostname": Hostname,
}

func (s OptionalString) String() string {
	if s.ptr == nil {
		return ""
	}
	return *s.ptr
}

// Env looks up an environment variable.
func Env(key string) OptionalString {
	value, ok := os.LookupEnv(key)
	if !ok {
		return OptionalString{nil}
	}
	return OptionalString{&value}
}

// Hostname is the name of the machine or container, or "unknown".
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}

// resolve returns the string held by arg. ok is false when arg holds nothing.
func resolve(arg interface{}) (value string, ok bool, err error) {
	switch v := arg.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case *string:
		if v != nil {
			return *v, true, nil
		}
		return "", false, nil
	case OptionalString:
		if v.ptr != nil {
			return *v.ptr, true, nil
		}
		return "", false, nil
	}
	return "", false, fmt.Errorf("unsupported type '%T'", arg)
}

// Default returns the first argument that holds a value.
func Default(args ...interface{}) (string, error) {
	for _, arg := range args {
		value, ok, err := resolve(arg)
		if err != nil {
			return "", fmt.Errorf("Default: %s", err)
		}
		if ok {
			return value, nil
		}
	}

	return "", errors.New("Default: all arguments are nil")
}

// Required fails the template when arg holds nothing.
func Required(arg interface{}) (string, error) {
	value, ok, err := resolve(arg)
	if err != nil {
		return "", fmt.Errorf("Requires: %s", err)
	}
	if !ok {
		return "", errors.New("Required argument is missing")
	}
	return value, nil
}

// GenerateTemplate will action all the functions on the configuration file
func GenerateTemplate(source []byte) ([]byte, error) {
	tplt, err := template.New("configfile").Funcs(funcMap).Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create template. Error: %s", err)
	}

	var buffer bytes.Buffer
	if err = tplt.Execute(&buffer, nil); err != nil {
		return nil, fmt.Errorf("failed to transform template. Error: %s", err)
	}
	return buffer.Bytes(), nil
}
