package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 台账不变量测试: 0 <= AvailableCopies <= TotalCopies

func TestNewBook(t *testing.T) {
	t.Run("新书全部副本可借", func(t *testing.T) {
		b, err := NewBook("9787111213826", "深入理解计算机系统", "机械工业出版社", 2016, 737, "zh", "", 5)
		require.NoError(t, err)

		assert.Equal(t, 5, b.TotalCopies)
		assert.Equal(t, 5, b.AvailableCopies)
		assert.Equal(t, 0, b.CopiesOnLoan())
		assert.True(t, b.IsAvailable())
	})

	t.Run("馆藏总数不能为负", func(t *testing.T) {
		_, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", -1)
		assert.ErrorIs(t, err, ErrInvalidCopies)
	})

	t.Run("零副本图书不可借", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 0)
		require.NoError(t, err)
		assert.False(t, b.IsAvailable())
	})
}

func TestAvailableCounter(t *testing.T) {
	t.Run("借出扣减_归还恢复", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 2)
		require.NoError(t, err)

		require.NoError(t, b.DecrAvailable())
		require.NoError(t, b.DecrAvailable())
		assert.Equal(t, 0, b.AvailableCopies)
		assert.Equal(t, 2, b.CopiesOnLoan())

		require.NoError(t, b.IncrAvailable())
		assert.Equal(t, 1, b.AvailableCopies)
	})

	t.Run("可借数为0时借出失败", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 1)
		require.NoError(t, err)

		require.NoError(t, b.DecrAvailable())
		err = b.DecrAvailable()
		assert.ErrorIs(t, err, ErrNoAvailableCopies)
		assert.Equal(t, 0, b.AvailableCopies, "失败的扣减不应改变台账")
	})

	t.Run("可借数不能超过馆藏总数", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 1)
		require.NoError(t, err)

		err = b.IncrAvailable()
		assert.ErrorIs(t, err, ErrCopiesExceedTotal)
		assert.Equal(t, 1, b.AvailableCopies)
	})
}

func TestAdjustTotalCopies(t *testing.T) {
	t.Run("调整总数保持在借数不变", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 5)
		require.NoError(t, err)

		// 借出2本
		require.NoError(t, b.DecrAvailable())
		require.NoError(t, b.DecrAvailable())

		// 总数5 → 10: 在借2不变,可借3 → 8
		require.NoError(t, b.AdjustTotalCopies(10))
		assert.Equal(t, 10, b.TotalCopies)
		assert.Equal(t, 8, b.AvailableCopies)
		assert.Equal(t, 2, b.CopiesOnLoan())

		// 总数10 → 2: 正好等于在借数,可借0
		require.NoError(t, b.AdjustTotalCopies(2))
		assert.Equal(t, 0, b.AvailableCopies)
	})

	t.Run("总数不能低于在借数", func(t *testing.T) {
		b, err := NewBook("9787111213826", "测试", "", 2016, 100, "zh", "", 5)
		require.NoError(t, err)

		require.NoError(t, b.DecrAvailable())
		require.NoError(t, b.DecrAvailable())

		err = b.AdjustTotalCopies(1)
		assert.ErrorIs(t, err, ErrBookCopiesOnLoan)
		assert.Equal(t, 5, b.TotalCopies, "失败的调整不应改变台账")
	})
}

func TestISBNValidation(t *testing.T) {
	valid := []string{
		"9787111213826",
		"7111213823",
		"978-7-111-21382-6",
		"043942089X",
	}
	for _, isbn := range valid {
		assert.True(t, isValidISBN(isbn), "应接受 %s", isbn)
	}

	invalid := []string{
		"",
		"12345",
		"97871112138261234",
		"abcdefghij",
	}
	for _, isbn := range invalid {
		assert.False(t, isValidISBN(isbn), "应拒绝 %s", isbn)
	}
}
