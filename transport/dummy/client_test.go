package dummy

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCircularClient(t *testing.T) {
	t.Run("one time", func(t *testing.T) {
		slices := [][]byte{
			[]byte("Hello"), []byte("world!"),
		}
		client := NewCircularClient(slices...).OneTime()

		for _, slice := range slices {
			got, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, string(slice), string(got))
		}

		_, err := client.Read()
		require.ErrorIs(t, err, io.EOF)
		require.True(t, client.Closed())
	})

	t.Run("looped slices", func(t *testing.T) {
		slices := [][]byte{
			[]byte("Hello"), []byte("world"), []byte("!"),
		}
		client := NewCircularClient(slices...)

		for i := 0; i < 2*len(slices); i++ {
			got, err := client.Read()
			require.NoError(t, err)
			require.Equal(t, string(slices[i%len(slices)]), string(got))
		}
	})

	t.Run("nop", func(t *testing.T) {
		client := NewNopClient()
		_, err := client.Read()
		require.ErrorIs(t, err, io.EOF)

		n, err := client.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		require.Equal(t, "hello", string(client.Written))
	})
}
