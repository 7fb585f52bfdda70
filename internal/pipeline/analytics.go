package pipeline

import (
	"context"

	"recruitflow/internal/domain"
	"recruitflow/internal/storage"
)

// Snapshot is a read-only derivation over one job's pipeline.
type Snapshot struct {
	JobID string `json:"job_id"`
	// StageCounts groups candidates by current status; every status has
	// an entry, including zeroes.
	StageCounts map[domain.CandidateStatus]int `json:"stage_counts"`
	// StageLabels carries the job's display label for each status.
	StageLabels map[domain.CandidateStatus]string `json:"stage_labels"`
	// ConversionRate is hired / (hired + rejected), 0 when no candidate
	// has reached a terminal status yet.
	ConversionRate float64 `json:"conversion_rate"`
	// AvgDaysPerStage averages how long candidates spent in each status,
	// derived from consecutive status history deltas. Only closed
	// intervals count; the still-open interval of a candidate's current
	// status is excluded.
	AvgDaysPerStage map[domain.CandidateStatus]float64 `json:"avg_days_per_stage"`
}

// PipelineSnapshot computes stage counts, the conversion rate and the
// average time in stage for one job. Purely derived; nothing is written.
func (e *Engine) PipelineSnapshot(ctx context.Context, jobID string) (*Snapshot, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	candidates, err := e.store.ListCandidates(ctx, jobID, storage.CandidateFilter{})
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		JobID:           jobID,
		StageCounts:     make(map[domain.CandidateStatus]int),
		StageLabels:     make(map[domain.CandidateStatus]string),
		AvgDaysPerStage: make(map[domain.CandidateStatus]float64),
	}
	for _, status := range domain.CandidateStatuses() {
		snapshot.StageCounts[status] = 0
		snapshot.StageLabels[status] = job.StageForStatus(status)
	}

	stageTotals := make(map[domain.CandidateStatus]float64)
	stageSamples := make(map[domain.CandidateStatus]int)

	for _, c := range candidates {
		snapshot.StageCounts[c.Status]++
		for i := 0; i+1 < len(c.StatusHistory); i++ {
			stage := c.StatusHistory[i].Status
			delta := c.StatusHistory[i+1].EnteredAt.Sub(c.StatusHistory[i].EnteredAt)
			stageTotals[stage] += delta.Hours() / 24
			stageSamples[stage]++
		}
	}

	hired := snapshot.StageCounts[domain.StatusHired]
	rejected := snapshot.StageCounts[domain.StatusRejected]
	if hired+rejected > 0 {
		snapshot.ConversionRate = float64(hired) / float64(hired+rejected)
	}

	for stage, total := range stageTotals {
		snapshot.AvgDaysPerStage[stage] = total / float64(stageSamples[stage])
	}
	return snapshot, nil
}
