package flow

// PaneState is the persisted form of a pane.
type PaneState struct {
	Paths       []string `json:"paths"`
	DisplayMode int      `json:"display_mode"`
	ShowHidden  bool     `json:"show_hidden"`
	SortCol     int      `json:"sort_col"`
	SortOrder   int      `json:"sort_order"`
	IsCompact   bool     `json:"is_compact"`
}

// LaneState is the persisted form of a lane.
type LaneState struct {
	Panes []PaneState `json:"panes"`
}

// AreaState is the persisted form of a flow area.
type AreaState struct {
	Lanes           []LaneState `json:"lanes"`
	ActiveLaneIndex int         `json:"active_lane_index"`
}

func (s PaneState) clone() PaneState {
	s.Paths = append([]string(nil), s.Paths...)
	return s
}

func (s LaneState) clone() LaneState {
	out := LaneState{Panes: make([]PaneState, len(s.Panes))}
	for i, p := range s.Panes {
		out.Panes[i] = p.clone()
	}
	return out
}

// Clone returns a deep copy.
func (s AreaState) Clone() AreaState {
	out := AreaState{ActiveLaneIndex: s.ActiveLaneIndex, Lanes: make([]LaneState, len(s.Lanes))}
	for i, l := range s.Lanes {
		out.Lanes[i] = l.clone()
	}
	return out
}
