package parallel

import "github.com/netvendor/netdev/device"

// DeviceQueue pairs one device's connection config with its ordered
// command queue. ID correlates results back to the caller's device list;
// it defaults to Config.Host when left blank.
type DeviceQueue struct {
	ID       string
	Config   device.Config
	Commands []string
	Options  device.SendCommandOptions
}

func (q DeviceQueue) id() string {
	if q.ID != "" {
		return q.ID
	}
	return q.Config.Host
}

// Job is the unit of work submitted to the Manager: one ordered queue per
// device, per spec §4.9's three job shapes.
type Job struct {
	Queues []DeviceQueue
}

// OneCommandOnAll builds the `one_command_on_all(cmd)` job shape: the same
// single command issued to every device in configs.
func OneCommandOnAll(cmd string, configs []device.Config) Job {
	return ManyCommandsOnAll([]string{cmd}, configs)
}

// ManyCommandsOnAll builds the `many_commands_on_all(cmds)` job shape: the
// same ordered command list issued to every device in configs.
func ManyCommandsOnAll(cmds []string, configs []device.Config) Job {
	queues := make([]DeviceQueue, 0, len(configs))
	for _, cfg := range configs {
		queues = append(queues, DeviceQueue{Config: cfg, Commands: cmds, Options: device.DefaultSendCommandOptions()})
	}
	return Job{Queues: queues}
}

// DeviceSpecific builds the `device_specific({config -> cmds})` job shape:
// each device gets its own command list. ids must be in the caller's
// intended submission order; configs and commands are keyed by the same id.
func DeviceSpecific(ids []string, configs map[string]device.Config, commands map[string][]string) Job {
	queues := make([]DeviceQueue, 0, len(ids))
	for _, id := range ids {
		queues = append(queues, DeviceQueue{
			ID:       id,
			Config:   configs[id],
			Commands: commands[id],
			Options:  device.DefaultSendCommandOptions(),
		})
	}
	return Job{Queues: queues}
}
