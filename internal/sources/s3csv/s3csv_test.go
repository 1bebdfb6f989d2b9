package s3csv

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGetter struct {
	mock.Mock
}

func (m *mockGetter) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, aws.ToString(in.Bucket), aws.ToString(in.Key))
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func TestParseURL(t *testing.T) {
	bucket, key, err := ParseURL("s3://finance/exports/2024.csv")
	require.NoError(t, err)
	assert.Equal(t, "finance", bucket)
	assert.Equal(t, "exports/2024.csv", key)

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "http://x/y", "s3:///key"} {
		_, _, err := ParseURL(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
	assert.True(t, IsS3URL("s3://a/b"))
	assert.False(t, IsS3URL("./data"))
}

func TestSourceTransactions(t *testing.T) {
	body := "Date,Category,Expense amount,Income amount,In main currency\n01/05/24,Rent,900,0,900\n"
	m := &mockGetter{}
	m.On("GetObject", mock.Anything, "finance", "export.csv").
		Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil)

	txs, err := NewWithClient(m, "finance", "export.csv").Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Rent", txs[0].Category)
	m.AssertExpectations(t)
}

func TestSourceGetError(t *testing.T) {
	m := &mockGetter{}
	boom := errors.New("access denied")
	m.On("GetObject", mock.Anything, "finance", "export.csv").Return(nil, boom)

	_, err := NewWithClient(m, "finance", "export.csv").Transactions(context.Background())
	assert.ErrorIs(t, err, boom)
}
