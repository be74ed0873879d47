package server

import "github.com/negaisa/obj-to-pathfinding-grid/math32"

// HubProgress broadcasts voxelization progress of one job, at most once per
// whole percent.
type HubProgress struct {
	hub  *Hub
	job  string
	last int
}

func NewHubProgress(hub *Hub, job string) *HubProgress {
	return &HubProgress{hub: hub, job: job, last: -1}
}

func (p *HubProgress) Starting() {
	p.last = -1
	p.hub.Broadcast(p.job, Event{EventStarted, ProgressData{Job: p.job}})
}

func (p *HubProgress) UpdateProgress(percent float32) {
	step := int(math32.Floor(percent))
	if step <= p.last {
		return
	}
	p.last = step
	p.hub.Broadcast(p.job, Event{EventProgress, ProgressData{Job: p.job, Percent: percent}})
}
