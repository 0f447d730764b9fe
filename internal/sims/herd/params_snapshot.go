package herd

import (
	"strconv"

	"herding/internal/core"
)

func (m *Model) Parameters() core.ParameterSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	free, groups := m.census()
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", m.cfg.Width),
				intParam("h", "Height", m.cfg.Height),
				intParam("population", "Population", m.cfg.Population),
				int64Param("seed", "Seed", m.cfg.Seed),
				intParam("move_attempts", "Move attempts", m.cfg.MoveAttempts),
			},
		},
		{
			Name:    "State",
			Summary: "Live counters since the last reset.",
			Params: []core.Parameter{
				intParam("ticks", "Ticks", m.sched.Ticks()),
				intParam("free", "Free animals", free),
				intParam("groups", "Groups", groups),
				intParam("minted", "Group ids minted", int(m.sched.Minted())),
			},
		},
	}}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}
