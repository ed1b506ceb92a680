package progrock_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry/progrock"
)

func TestJournal_PartialLineFlushedOnComplete(t *testing.T) {
	var out bytes.Buffer
	recorder := progrock.NewRecorder(progrock.NewJournal(&out))

	_, v := recorder.Record(context.Background(), "terminus_log/1.0.2 package")
	_, err := v.Stdout().Write([]byte("-- Installing: lib"))
	require.NoError(t, err)
	_, err = v.Stdout().Write([]byte("terminus.a\n-- Up-to-date"))
	require.NoError(t, err)
	v.Complete(nil)
	require.NoError(t, recorder.Close())

	assert.Equal(t, strings.Join([]string{
		"=> terminus_log/1.0.2 package",
		"terminus_log/1.0.2 package | -- Installing: libterminus.a",
		"terminus_log/1.0.2 package | -- Up-to-date",
		"DONE terminus_log/1.0.2 package",
		"",
	}, "\n"), out.String())
}

func TestJournal_CloseFlushesUnfinishedVertex(t *testing.T) {
	var out bytes.Buffer
	recorder := progrock.NewRecorder(progrock.NewJournal(&out))

	_, v := recorder.Record(context.Background(), "terminus_log/1.0.2 test")
	_, err := v.Stderr().Write([]byte("interrupted"))
	require.NoError(t, err)
	require.NoError(t, recorder.Close())

	assert.Contains(t, out.String(), "terminus_log/1.0.2 test | interrupted\n")
	assert.NotContains(t, out.String(), "DONE")
}
