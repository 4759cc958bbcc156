package parallel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvendor/netdev/device"
	"github.com/netvendor/netdev/devicetype"
)

func TestOneCommandOnAllBuildsOneQueuePerDevice(t *testing.T) {
	configs := []device.Config{
		{DeviceType: devicetype.CiscoIOS, Host: "r1"},
		{DeviceType: devicetype.CiscoNXOS, Host: "r2"},
	}
	job := OneCommandOnAll("show version", configs)
	require.Len(t, job.Queues, 2)
	for i, q := range job.Queues {
		assert.Equal(t, configs[i].Host, q.id())
		assert.Equal(t, []string{"show version"}, q.Commands)
	}
}

func TestManyCommandsOnAllSharesCommandList(t *testing.T) {
	configs := []device.Config{{DeviceType: devicetype.CiscoIOS, Host: "r1"}}
	cmds := []string{"show version", "show ip interface brief"}
	job := ManyCommandsOnAll(cmds, configs)
	require.Len(t, job.Queues, 1)
	assert.Equal(t, cmds, job.Queues[0].Commands)
}

func TestDeviceSpecificPreservesIDOrderAndPerDeviceCommands(t *testing.T) {
	ids := []string{"r2", "r1"}
	configs := map[string]device.Config{
		"r1": {DeviceType: devicetype.CiscoIOS, Host: "r1"},
		"r2": {DeviceType: devicetype.CiscoNXOS, Host: "r2"},
	}
	commands := map[string][]string{
		"r1": {"show version"},
		"r2": {"show running-config"},
	}
	job := DeviceSpecific(ids, configs, commands)
	require.Len(t, job.Queues, 2)
	assert.Equal(t, "r2", job.Queues[0].id())
	assert.Equal(t, []string{"show running-config"}, job.Queues[0].Commands)
	assert.Equal(t, "r1", job.Queues[1].id())
	assert.Equal(t, []string{"show version"}, job.Queues[1].Commands)
}

func TestDeviceQueueIDDefaultsToHost(t *testing.T) {
	q := DeviceQueue{Config: device.Config{Host: "r9"}}
	assert.Equal(t, "r9", q.id())

	q.ID = "custom"
	assert.Equal(t, "custom", q.id())
}
