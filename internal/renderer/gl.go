package renderer

import (
	"errors"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// glBinder binds vertex layouts against the attributes of a linked program.
type glBinder struct {
	shader *Shader
}

func (b glBinder) AttribLocation(name string) int32 {
	return b.shader.AttribLocation(name)
}

func (glBinder) VertexAttribPointer(location uint32, components, stride int32, offset int) {
	gl.VertexAttribPointer(location, components, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (glBinder) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

// GLTextures uploads images as mipmapped, repeating 2D textures.
type GLTextures struct{}

func (GLTextures) Upload(img *image.RGBA) (uint32, error) {
	if img.Stride != img.Rect.Dx()*4 {
		return 0, errors.New("unsupported stride")
	}
	var textureID uint32
	gl.GenTextures(1, &textureID)
	if textureID == 0 {
		return 0, errors.New("glGenTextures returned no texture")
	}
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))

	// map scale options tile the image
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return textureID, nil
}

func (GLTextures) Delete(id uint32) {
	gl.DeleteTextures(1, &id)
}
