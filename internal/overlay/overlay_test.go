package overlay

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/kathputli/internal/detector"
)

func TestStickFigure(t *testing.T) {
	t.Run("full pose", func(t *testing.T) {
		fig := StickFigure(detector.NeutralPose(), 640, 480)

		assert.Len(t, fig.Segments, len(StickBones))
		require.True(t, fig.HasHead)
		assert.Equal(t, image.Pt(320, 120-HeadRadius), fig.Head)
		assert.Empty(t, fig.Dots)
	})

	t.Run("absent joint drops its bones", func(t *testing.T) {
		pose := detector.NeutralPose()
		pose.Points[detector.LeftElbow] = detector.Landmark{}

		fig := StickFigure(pose, 640, 480)
		assert.Len(t, fig.Segments, len(StickBones)-2)
	})

	t.Run("no nose no head", func(t *testing.T) {
		pose := detector.NeutralPose()
		pose.Points[detector.Nose] = detector.Landmark{}

		fig := StickFigure(pose, 640, 480)
		assert.False(t, fig.HasHead)
		assert.Len(t, fig.Segments, len(StickBones)-2)
	})

	t.Run("nil pose", func(t *testing.T) {
		fig := StickFigure(nil, 640, 480)
		assert.Empty(t, fig.Segments)
		assert.False(t, fig.HasHead)
	})
}

func TestSkeleton(t *testing.T) {
	fig := Skeleton(detector.NeutralPose(), 100, 100)

	assert.Len(t, fig.Segments, len(SkeletonBones))
	assert.Len(t, fig.Dots, int(detector.NumJoints))
	assert.False(t, fig.HasHead)
	assert.Contains(t, fig.Dots, image.Pt(50, 25))
}

func TestRenderStickman(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := RenderStickman(detector.NeutralPose(), 640, 480)
	defer mat.Close()

	require.Equal(t, 480, mat.Rows())
	require.Equal(t, 640, mat.Cols())
	assert.Equal(t, uint8(255), mat.GetVecbAt(5, 5)[0], "background should be white")
	assert.Equal(t, uint8(0), mat.GetVecbAt(105, 320)[0], "head should be filled black")
}

func TestRenderSilhouette(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mat := RenderSilhouette(detector.NeutralPose(), 640, 480)
	defer mat.Close()

	assert.Equal(t, uint8(0), mat.GetVecbAt(5, 5)[0], "background should be black")
	assert.Equal(t, uint8(255), mat.GetVecbAt(120, 320)[0], "nose dot should be white")

	blank := RenderSilhouette(nil, 64, 48)
	defer blank.Close()
	assert.Equal(t, uint8(0), blank.GetVecbAt(24, 32)[0])
}
