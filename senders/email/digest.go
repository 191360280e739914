package email

import (
	"fmt"

	"github.com/facebookgo/muster"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/scanner"
)

type digestTemplateStruct struct {
	GeneratedAt string
	Owner       string
	TotalRepos  int
	Attention   []attentionRepo
}

type attentionRepo struct {
	Name       string
	Track      string
	Stage      string
	Score      int
	LastCommit string
	Dirty      int
}

func (s *Sender) digestBatchMaker() muster.Batch {
	return &digestBatch{Sender: s}
}

// digestBatch keeps only the newest snapshot; older ones in the same
// window are already stale.
type digestBatch struct {
	Latest *projecttrack.Dashboard
	Sender *Sender
}

func (b *digestBatch) Add(item interface{}) {
	dashboard, ok := item.(*projecttrack.Dashboard)
	if !ok {
		return
	}
	b.Latest = dashboard
}

func (b *digestBatch) Fire(notifier muster.Notifier) {
	defer notifier.Done()
	if b.Latest == nil {
		return
	}
	messageData := buildDigest(b.Latest)
	if len(messageData.Attention) < 1 {
		return
	}
	err := b.Sender.sendMessage(b.Sender.Recipient, getDigestSubject(messageData), *messageData)
	if err != nil {
		b.Sender.Log.Error().Str("error", err.Error()).Msg("can't send email")
	}
}

func buildDigest(dashboard *projecttrack.Dashboard) *digestTemplateStruct {
	messageData := &digestTemplateStruct{
		GeneratedAt: dashboard.GeneratedAt,
		Owner:       dashboard.Owner,
		TotalRepos:  dashboard.Summary.TotalRepos,
	}
	for _, repo := range dashboard.Repos {
		stage := repo.Progress.Stage
		if stage != scanner.StageStalled && stage != scanner.StageAtRisk {
			continue
		}
		messageData.Attention = append(messageData.Attention, attentionRepo{
			Name:       repo.Name,
			Track:      repo.Track,
			Stage:      stage,
			Score:      repo.Progress.Score,
			LastCommit: repo.Status.LastCommit.Date,
			Dirty:      repo.Status.Dirty.Total(),
		})
	}
	return messageData
}

func getDigestSubject(messageData *digestTemplateStruct) string {
	return fmt.Sprintf("%d of %d repos need attention", len(messageData.Attention), messageData.TotalRepos)
}
