package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "MCPTB"

type Config struct {
	ServerURL string `envconfig:"TASKBOUNTY_ADDR" default:"http://localhost:3200"`
	APIKey    string `envconfig:"TASKBOUNTY_API_KEY"`
}

func NewConfig() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process(envPrefix, c); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return c, nil
}
