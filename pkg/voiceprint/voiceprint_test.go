package voiceprint

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voiceprint/internal/config"
	"voiceprint/internal/fingerprint"
	"voiceprint/internal/similarity"
	"voiceprint/internal/stylometry"
)

var formalSamples = []string{
	"The committee shall review the findings and, furthermore, the board shall publish " +
		"the results. Moreover, the analysis was thorough; therefore the conclusions stand. " +
		"Consequently, the staff prepared a revised schedule, and thus the project advanced. " +
		"Nevertheless, the auditors requested additional documentation regarding the budget, " +
		"whereas the treasurer subsequently provided the aforementioned records without delay.",

	"Pursuant to the agreement, the council shall convene in the autumn and shall adopt " +
		"the revised charter. Therefore the secretary circulated the agenda, and the delegates " +
		"reviewed it accordingly. Furthermore, the finance office prepared a detailed statement, " +
		"whereas the legal office examined the precedent. Hence the assembly proceeded without " +
		"objection, and the session closed promptly.",

	"The tribunal shall publish its findings herein, and the registrar shall notify the " +
		"parties accordingly. Moreover, the aforementioned schedule governs all subsequent " +
		"hearings; thus the clerks prepared the necessary records. Nevertheless, counsel " +
		"requested an extension regarding the filings, and the bench granted it. Consequently " +
		"the matter was adjourned until the following term.",
}

var informalSamples = []string{
	"Yeah, we're gonna sort the stuff out later, okay? It's kinda messy " +
		"and there's lots of things we don't need. I'm totally sure it'll be fine, and honestly " +
		"it's super easy. We've got loads of cool ideas, so let's just grab whatever works and " +
		"see how it goes, yeah? Don't worry about it, it's all good stuff anyway.",

	"Okay, so here's the deal: we'll just grab whatever's cheap and call it a day. I'm kinda " +
		"tired of all this stuff, honestly, and it's totally fine if we don't finish everything. " +
		"There's loads of cool bits we can skip, y'know? Let's chill, it'll sort itself out, no " +
		"worries, yeah? We've got plenty of time anyway, so it's all good.",

	"Yeah, I gotta say, this whole thing's been super easy so far. We're basically done, and " +
		"it's awesome how fast it went. Don't stress about the little stuff, okay? It'll all " +
		"come together, and honestly it's kinda fun when you don't overthink it. Totally worth " +
		"it, y'know, even if we're winging it.",
}


func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(&config.Config{Storage: config.StorageConfig{Type: "memory"}})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := NewWithStore(&config.Config{Storage: config.StorageConfig{Type: "redis"}}, nil)
	require.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.Analyze(ctx, formalSamples[0])
	require.NoError(t, err)
	assert.Greater(t, m.Semantic.Formality, 0.5, "connective-heavy prose reads as formal")

	_, err = svc.Analyze(ctx, "Too short.")
	assert.True(t, errors.Is(err, stylometry.ErrSampleTooShort))
}

func TestCreateFingerprintAndCompare(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	fp, err := svc.CreateFingerprint(ctx, formalSamples)
	require.NoError(t, err)
	assert.Equal(t, 3, fp.SampleCount)
	assert.GreaterOrEqual(t, fp.Confidence, 0.5)

	assert.Equal(t, 100, svc.CompareVoices(fp, fp), "a fingerprint matches itself perfectly")

	_, err = svc.CreateFingerprint(ctx, formalSamples[:2])
	assert.True(t, errors.Is(err, fingerprint.ErrInsufficientSamples))
}

func TestCompareFormalAndInformalVoices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	formal, err := svc.CreateFingerprint(ctx, formalSamples)
	require.NoError(t, err)
	informal, err := svc.CreateFingerprint(ctx, informalSamples)
	require.NoError(t, err)

	assert.Equal(t, 100, svc.CompareVoices(formal, formal))
	assert.Equal(t, 100, svc.CompareVoices(informal, informal))

	score := svc.CompareVoices(formal, informal)
	assert.Less(t, score, 70, "voices in opposite registers must score materially lower")
	assert.Equal(t, score, svc.CompareVoices(informal, formal))
}

func TestSaveAndLoadProfile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	fp, err := svc.CreateFingerprint(ctx, formalSamples)
	require.NoError(t, err)

	stored := svc.SaveProfile(ctx, "writer-1", fp)
	require.NotNil(t, stored)
	assert.Len(t, stored.DNAVector, fingerprint.VectorLen)
	assert.Equal(t, fp.Confidence, stored.Confidence)
	assert.Equal(t, 3, stored.SamplesAnalyzed)

	got := svc.Profile(ctx, "writer-1")
	require.NotNil(t, got)
	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, stored.DNAVector, got.DNAVector)

	assert.Nil(t, svc.Profile(ctx, "nobody"))
}

func TestVoiceSimilarityAgainstStoredVoice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	profile, err := svc.CreateFingerprint(ctx, formalSamples)
	require.NoError(t, err)

	// A rewrite in the same voice scores high.
	res, err := svc.VoiceSimilarity(ctx, formalSamples[0], formalSamples[1], profile)
	require.NoError(t, err)
	high := res.Similarity

	// A rewrite into a casual register scores low and flags formality.
	res, err = svc.VoiceSimilarity(ctx, formalSamples[0], informalSamples[0], profile)
	require.NoError(t, err)
	assert.Less(t, res.Similarity, 70)
	assert.Less(t, res.Similarity, high)
	assert.True(t, slices.Contains(res.AffectedDimensions, similarity.DimFormality))
}

func TestRecordSampleAccumulates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.RecordSample(ctx, "writer-1", formalSamples[0])
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.SamplesAnalyzed)
	assert.Equal(t, 0.5, first.Confidence)

	second, err := svc.RecordSample(ctx, "writer-1", formalSamples[1])
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 2, second.SamplesAnalyzed)
	assert.InDelta(t, 0.55, second.Confidence, 1e-12)
	assert.Equal(t, first.ID, second.ID)
}

func TestDetectEvolutionStableVoice(t *testing.T) {
	svc := newTestService(t)

	evo, err := svc.DetectEvolution(context.Background(), formalSamples, formalSamples)
	require.NoError(t, err)
	assert.Equal(t, 0, evo.DriftScore)
	assert.Equal(t, similarity.TrendStable, evo.Trend)
}

func TestProfilesAndSimilarProfiles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	fp, err := svc.CreateFingerprint(ctx, formalSamples)
	require.NoError(t, err)
	require.NotNil(t, svc.SaveProfile(ctx, "writer-1", fp))
	require.NotNil(t, svc.SaveProfile(ctx, "writer-2", fp))

	profiles := svc.Profiles(ctx, []string{"writer-1", "writer-2", "ghost"})
	assert.Len(t, profiles, 2)

	matches := svc.SimilarProfiles(ctx, "writer-1", 0)
	require.Len(t, matches, 1)
	assert.Equal(t, "writer-2", matches[0].UserID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestMetricsHandler(t *testing.T) {
	svc := newTestService(t)
	assert.NotNil(t, svc.MetricsHandler())
}
