/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package grblconf is the configuration document an implementer feeds to
// supervisor.New: a plain struct decoded from YAML/JSON/env through
// github.com/spf13/viper and field-validated with
// github.com/go-playground/validator/v10 before use. There is no global
// singleton; the document is injected at construction.
package grblconf

import (
	"fmt"
	"time"

	libval "github.com/go-playground/validator/v10"
	libdur "github.com/nabbar/grbl-engine/duration"
	libsiz "github.com/nabbar/grbl-engine/size"
	"github.com/spf13/viper"
)

// Serial holds the serial-port settings.
type Serial struct {
	BaudRate    int    `mapstructure:"baud_rate" yaml:"baud_rate" json:"baud_rate" validate:"omitempty,min=300"`
	DataBits    byte   `mapstructure:"data_bits" yaml:"data_bits" json:"data_bits"`
	Parity      string `mapstructure:"parity" yaml:"parity" json:"parity"`
	StopBits    byte   `mapstructure:"stop_bits" yaml:"stop_bits" json:"stop_bits"`
	FlowControl bool   `mapstructure:"flow_control" yaml:"flow_control" json:"flow_control"`
	RTSCTS      bool   `mapstructure:"rtscts" yaml:"rtscts" json:"rtscts"`
	AutoOpen    bool   `mapstructure:"auto_open" yaml:"auto_open" json:"auto_open"`
}

// Timeouts holds the per-operation deadlines; each field is a
// duration.Duration so the days-aware text encoding ("5s", "2m")
// round-trips through YAML/JSON without a custom unmarshaler here.
type Timeouts struct {
	Connection     libdur.Duration `mapstructure:"connection" yaml:"connection" json:"connection"`
	Command        libdur.Duration `mapstructure:"command" yaml:"command" json:"command"`
	Emergency      libdur.Duration `mapstructure:"emergency" yaml:"emergency" json:"emergency"`
	Initialization libdur.Duration `mapstructure:"initialization" yaml:"initialization" json:"initialization"`
}

// AxisLimit bounds one axis of travel.
type AxisLimit struct {
	Min         float64 `mapstructure:"min" yaml:"min" json:"min"`
	Max         float64 `mapstructure:"max" yaml:"max" json:"max"`
	TotalTravel float64 `mapstructure:"totalTravel" yaml:"totalTravel" json:"totalTravel"`
}

// MachineLimits bounds the three axes of travel.
type MachineLimits struct {
	X AxisLimit `mapstructure:"x" yaml:"x" json:"x"`
	Y AxisLimit `mapstructure:"y" yaml:"y" json:"y"`
	Z AxisLimit `mapstructure:"z" yaml:"z" json:"z"`
}

// Preset is one entry of the optional presets list: a single command,
// a file path, or a sequence of commands. Exactly one of the three should
// be populated; Config validation does not enforce that exclusivity since
// presets are an external-layer concern the core only carries as data.
type Preset struct {
	Name     string   `mapstructure:"name" yaml:"name" json:"name" validate:"required"`
	Command  string   `mapstructure:"command" yaml:"command" json:"command,omitempty"`
	File     string   `mapstructure:"file" yaml:"file" json:"file,omitempty"`
	Sequence []string `mapstructure:"sequence" yaml:"sequence" json:"sequence,omitempty"`
}

// Validation holds the pre-submission line checks.
type Validation struct {
	GCodeCommandRegex  string   `mapstructure:"gcodeCommandRegex" yaml:"gcodeCommandRegex" json:"gcodeCommandRegex"`
	MaxCommandLength   int      `mapstructure:"maxCommandLength" yaml:"maxCommandLength" json:"maxCommandLength" validate:"omitempty,min=1"`
	GCodeFileExtensions []string `mapstructure:"gcodeFileExtensions" yaml:"gcodeFileExtensions" json:"gcodeFileExtensions"`
}

// Safety lists line prefixes that need explicit confirmation.
type Safety struct {
	DangerousCommands []string `mapstructure:"dangerous_commands" yaml:"dangerous_commands" json:"dangerous_commands"`
}

// Config is the full configuration document the supervisor consumes.
type Config struct {
	DefaultPort string `mapstructure:"default_port" yaml:"default_port" json:"default_port" validate:"required"`
	Serial      Serial `mapstructure:"serial" yaml:"serial" json:"serial"`
	Timeouts    Timeouts `mapstructure:"timeouts" yaml:"timeouts" json:"timeouts"`

	LineEnding           string   `mapstructure:"line_ending" yaml:"line_ending" json:"line_ending"`
	InitCommands         []string `mapstructure:"init_commands" yaml:"init_commands" json:"init_commands"`
	StatusCommand        string   `mapstructure:"status_command" yaml:"status_command" json:"status_command"`
	SettingsCommand      string   `mapstructure:"settings_command" yaml:"settings_command" json:"settings_command"`
	UnlockCommand        string   `mapstructure:"unlock_command" yaml:"unlock_command" json:"unlock_command"`
	HomeCommand          string   `mapstructure:"home_command" yaml:"home_command" json:"home_command"`
	ResetCommand         string   `mapstructure:"reset_command" yaml:"reset_command" json:"reset_command"`
	EmergencyStopCommand string   `mapstructure:"emergency_stop_command" yaml:"emergency_stop_command" json:"emergency_stop_command"`

	MachineLimits MachineLimits `mapstructure:"machine_limits" yaml:"machine_limits" json:"machine_limits"`
	Presets       []Preset      `mapstructure:"presets" yaml:"presets" json:"presets,omitempty"`
	Validation    Validation    `mapstructure:"validation" yaml:"validation" json:"validation"`
	Safety        Safety        `mapstructure:"safety" yaml:"safety" json:"safety"`

	MaxQueueSize int `mapstructure:"max_queue_size" yaml:"max_queue_size" json:"max_queue_size" validate:"omitempty,min=1"`

	StatusPollFast    libdur.Duration `mapstructure:"status_poll_fast" yaml:"status_poll_fast" json:"status_poll_fast"`
	StatusPollSlow    libdur.Duration `mapstructure:"status_poll_slow" yaml:"status_poll_slow" json:"status_poll_slow"`
	PositionThreshold float64         `mapstructure:"position_threshold" yaml:"position_threshold" json:"position_threshold" validate:"omitempty,min=0"`

	BufferSize libsiz.Size `mapstructure:"buffer_size" yaml:"buffer_size" json:"buffer_size"`
}

// ApplyDefaults fills any zero-valued field with its documented default,
// without disturbing fields the document already set explicitly.
func (c Config) ApplyDefaults() Config {
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = 115200
	}
	if c.Serial.DataBits == 0 {
		c.Serial.DataBits = 8
	}
	if c.Serial.StopBits == 0 {
		c.Serial.StopBits = 1
	}
	if c.Serial.Parity == "" {
		c.Serial.Parity = "none"
	}
	if c.LineEnding == "" {
		c.LineEnding = "\r\n"
	}
	if c.Timeouts.Connection == 0 {
		c.Timeouts.Connection = libdur.Duration(5 * time.Second)
	}
	if c.Timeouts.Command == 0 {
		c.Timeouts.Command = libdur.Duration(10 * time.Second)
	}
	if c.Timeouts.Emergency == 0 {
		c.Timeouts.Emergency = libdur.Duration(15 * time.Second)
	}
	if c.Timeouts.Initialization == 0 {
		c.Timeouts.Initialization = libdur.Duration(2 * time.Second)
	}
	if c.StatusCommand == "" {
		c.StatusCommand = "?"
	}
	if c.SettingsCommand == "" {
		c.SettingsCommand = "$$"
	}
	if c.UnlockCommand == "" {
		c.UnlockCommand = "$X"
	}
	if c.HomeCommand == "" {
		c.HomeCommand = "$H"
	}
	if c.ResetCommand == "" {
		c.ResetCommand = "\x18"
	}
	if c.EmergencyStopCommand == "" {
		c.EmergencyStopCommand = "\x18"
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = 64
	}
	if c.StatusPollFast == 0 {
		c.StatusPollFast = libdur.Duration(100 * time.Millisecond)
	}
	if c.StatusPollSlow == 0 {
		c.StatusPollSlow = libdur.Duration(500 * time.Millisecond)
	}
	if c.PositionThreshold == 0 {
		c.PositionThreshold = 0.001
	}
	if c.Validation.MaxCommandLength == 0 {
		c.Validation.MaxCommandLength = 256
	}
	return c
}

// Load reads configuration from v (already told where/what to read via
// v.SetConfigFile / v.AddConfigPath / v.AutomaticEnv by the caller),
// decodes it into a Config with mapstructure tag matching, applies
// defaults, and validates it with validator/v10 before returning.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("grblconf: reading config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("grblconf: decoding config: %w", err)
	}

	c = c.ApplyDefaults()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate field-validates c with validator/v10's struct tags, returning a
// single error aggregating every failing constraint.
func (c Config) Validate() error {
	if err := libval.New().Struct(c); err != nil {
		if ve, ok := err.(libval.ValidationErrors); ok {
			msg := "grblconf: invalid configuration:"
			for _, fe := range ve {
				msg += fmt.Sprintf(" %s failed '%s';", fe.Namespace(), fe.ActualTag())
			}
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("grblconf: validating configuration: %w", err)
	}
	return nil
}
