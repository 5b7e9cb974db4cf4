package filter

import (
	"fmt"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// SharpenKernel returns the 3x3 Laplacian sharpening kernel.
func SharpenKernel() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	})
}

// AutoSigma returns the Gaussian standard deviation for a kernel of the
// given size, matching what OpenCV derives when sigma is zero.
func AutoSigma(ksize int) float64 {
	return 0.3*((float64(ksize)-1)*0.5-1) + 0.8
}

// kernelMat copies a dense kernel into a CV_32F Mat for Filter2D.
func kernelMat(k *mat.Dense) (gocv.Mat, error) {
	rows, cols := k.Dims()
	if rows%2 == 0 || cols%2 == 0 {
		return gocv.NewMat(), fmt.Errorf("kernel must have odd dimensions, got %dx%d", rows, cols)
	}

	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.SetFloatAt(r, c, float32(k.At(r, c)))
		}
	}
	return m, nil
}
