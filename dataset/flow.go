package dataset

import (
	"github.com/seqsense/pclearn/cloud"
)

// FlowData is an in-memory set of cloud pairs with per-point flow.
type FlowData struct {
	pc1, pc2, flow []*cloud.Cloud
}

func NewFlowData(pc1, pc2, flow []*cloud.Cloud) (*FlowData, error) {
	if len(pc1) != len(pc2) || len(pc1) != len(flow) {
		return nil, unsupported("flow data lengths differ: %d, %d, %d", len(pc1), len(pc2), len(flow))
	}
	for i := range pc1 {
		if pc1[i].Len() != flow[i].Len() {
			return nil, unsupported("sample %d has %d points and %d flow vectors", i, pc1[i].Len(), flow[i].Len())
		}
	}
	return &FlowData{pc1: pc1, pc2: pc2, flow: flow}, nil
}

func (f *FlowData) Len() int {
	return len(f.pc1)
}

func (f *FlowData) Get(i int) (pc1, pc2, flow *cloud.Cloud, err error) {
	if err := checkIndex(i, len(f.pc1)); err != nil {
		return nil, nil, nil, err
	}
	return f.pc1[i].Clone(), f.pc2[i].Clone(), f.flow[i].Clone(), nil
}
