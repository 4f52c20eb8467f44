package model

// AssignmentTieEpsilonMeters は距離が同じとみなす許容誤差（メートル）
const AssignmentTieEpsilonMeters = 1e-6

// AgentAssignment は一人の工兵に割り当てられたゾーン（割り当て順）
type AgentAssignment struct {
	Agent Agent        `json:"agent"`
	Zones []HazardZone `json:"zones"`
}

// Assignment 工兵 → ゾーン一覧の割り当て結果
// Agents は入力の工兵順を保持する
type Assignment struct {
	Agents []AgentAssignment `json:"agents"`
}

// NewAssignment は全工兵を空のゾーン一覧で初期化した割り当てを作成する
func NewAssignment(agents []Agent) *Assignment {
	a := &Assignment{Agents: make([]AgentAssignment, len(agents))}
	for i, agent := range agents {
		a.Agents[i] = AgentAssignment{Agent: agent, Zones: []HazardZone{}}
	}
	return a
}

// TotalZones は割り当てられたゾーンの総数を返す
func (a *Assignment) TotalZones() int {
	if a == nil {
		return 0
	}
	total := 0
	for _, aa := range a.Agents {
		total += len(aa.Zones)
	}
	return total
}

// IsEmpty はゾーンが一つも割り当てられていないかチェック
func (a *Assignment) IsEmpty() bool {
	return a.TotalZones() == 0
}

// ZonesFor は工兵IDに割り当てられたゾーンを返す
func (a *Assignment) ZonesFor(agentID string) ([]HazardZone, bool) {
	if a == nil {
		return nil, false
	}
	for _, aa := range a.Agents {
		if aa.Agent.ID == agentID {
			return aa.Zones, true
		}
	}
	return nil, false
}
