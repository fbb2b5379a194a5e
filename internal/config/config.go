package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type LogLevel string

const (
	Trace   LogLevel = "trace"
	Debug   LogLevel = "debug"
	Info    LogLevel = "info"
	Warning LogLevel = "warning"
	Error   LogLevel = "error"
)

const (
	// MaxUpdateHz is the top of the dashboard update speed range
	MaxUpdateHz = 20.0
	// DeviceName identifies the meter in Home Assistant
	DeviceName = "NASAbot Power Monitor"
)

// NewConfig reads an optional TOML file and the .env file, then validates.
// An empty cfgFile yields the defaults.
func NewConfig(cfgFile string) (*Config, error) {
	config := Default()

	if cfgFile != "" {
		if _, err := toml.DecodeFile(cfgFile, config); err != nil {
			return nil, errors.Wrap(err, "decoding toml")
		}
	}

	// Load .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return config, nil
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		LogLevel: Info,
		MQTT: MQTTSettings{
			Broker:   "localhost",
			Port:     1883,
			ClientID: "powermon",
		},
		Topics: Topics{
			BusVoltage:   "busVoltage",
			BusPower:     "busPower",
			ShuntCurrent: "shuntCurrent",
			CellVoltages: "cellVoltages",
			Power:        "power_monitor",
		},
		Dashboard: Dashboard{
			NumCells: 8,
			UpdateHz: 10,
		},
		LCD: LCD{
			Port: "/dev/ttyUSB0",
			Baud: 57600,
		},
	}
}

type Config struct {
	// LogFile is the path to the log on disk. Logs go to stderr when empty.
	LogFile string `toml:"log_file"`
	// LogLevel sets the logging output to desired level.
	LogLevel LogLevel `toml:"log_level"`

	MQTT      MQTTSettings `toml:"mqtt"`
	Topics    Topics       `toml:"topics"`
	Dashboard Dashboard    `toml:"dashboard"`
	LCD       LCD          `toml:"lcd"`
}

// applyEnv overrides broker credentials from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		c.MQTT.Broker = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		c.MQTT.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case Trace, Debug, Info, Warning, Error:
	case "":
		c.LogLevel = Info
	default:
		return errors.Errorf("invalid log_level %q", c.LogLevel)
	}

	if err := c.MQTT.Validate(); err != nil {
		return errors.Wrap(err, "validating mqtt settings")
	}
	if err := c.Topics.Validate(); err != nil {
		return errors.Wrap(err, "validating topics")
	}
	if err := c.Dashboard.Validate(); err != nil {
		return errors.Wrap(err, "validating dashboard")
	}
	if err := c.LCD.Validate(); err != nil {
		return errors.Wrap(err, "validating lcd")
	}
	return nil
}

// Topics names the bus topics both nodes subscribe to
type Topics struct {
	BusVoltage   string `toml:"bus_voltage"`
	BusPower     string `toml:"bus_power"`
	ShuntCurrent string `toml:"shunt_current"`
	CellVoltages string `toml:"cell_voltages"`
	// Power carries instantaneous power encoded as a temperature message
	Power string `toml:"power"`
}

func (t *Topics) Validate() error {
	named := map[string]string{
		"bus_voltage":   t.BusVoltage,
		"bus_power":     t.BusPower,
		"shunt_current": t.ShuntCurrent,
		"cell_voltages": t.CellVoltages,
		"power":         t.Power,
	}
	for name, topic := range named {
		if topic == "" {
			return errors.Errorf("%s topic cannot be empty", name)
		}
	}
	return nil
}

// Dashboard returns the topics the dashboard subscribes to
func (t *Topics) Dashboard() []string {
	return []string{t.BusVoltage, t.BusPower, t.ShuntCurrent, t.CellVoltages}
}

type Dashboard struct {
	// NumCells is the number of cells in the battery pack.
	NumCells int `toml:"num_cells"`
	// UpdateHz is the initial redraw rate. Zero leaves the chart frozen.
	UpdateHz float64 `toml:"update_hz"`
}

func (d *Dashboard) Validate() error {
	if d.NumCells <= 0 {
		return errors.Errorf("num_cells needs to be positive")
	}
	if d.UpdateHz < 0 || d.UpdateHz > MaxUpdateHz {
		return errors.Errorf("update_hz must be between 0 and %.0f", MaxUpdateHz)
	}
	return nil
}

type LCD struct {
	// Port is the serial device of the display.
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
	// PublishEnergy also publishes the energy total to Home Assistant.
	PublishEnergy bool `toml:"publish_energy"`
}

func (l *LCD) Validate() error {
	if l.Port == "" {
		return errors.Errorf("serial port cannot be empty")
	}
	if l.Baud <= 0 {
		return errors.Errorf("baud needs to be positive")
	}
	return nil
}

type MQTTSettings struct {
	Broker   string `toml:"broker"`
	Port     int    `toml:"port"`
	ClientID string `toml:"client_id"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

func (m *MQTTSettings) BrokerURI() (string, error) {
	if err := m.Validate(); err != nil {
		return "", errors.Wrap(err, "fetching broker URI")
	}

	uri := fmt.Sprintf("tcp://%s:%d", m.Broker, m.Port)
	return uri, nil
}

// ClientOptions builds paho options; suffix keeps the client IDs of the two nodes apart
func (m *MQTTSettings) ClientOptions(suffix string) (*mqtt.ClientOptions, error) {
	brokerURI, err := m.BrokerURI()
	if err != nil {
		return nil, errors.Wrap(err, "creating mqtt options")
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURI)
	if m.Username != "" {
		opts.SetUsername(m.Username)
	}
	if m.Password != "" {
		opts.SetPassword(m.Password)
	}
	clientID := m.ClientID
	if suffix != "" {
		clientID += "-" + suffix
	}
	opts.SetClientID(clientID)
	return opts, nil
}

func (m *MQTTSettings) Validate() error {
	if m.Broker == "" {
		return errors.Errorf("broker cannot be empty")
	}

	if m.Port == 0 {
		m.Port = 1883
	}
	if m.ClientID == "" {
		m.ClientID = "powermon"
	}
	return nil
}
