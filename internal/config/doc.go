// Package config loads the insightful.json project configuration.
package config
