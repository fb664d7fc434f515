package renderer

import (
	"errors"
	"fmt"
	"strings"

	"SceneGL/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

var (
	ErrShaderCompile = errors.New("shader compile failed")
	ErrShaderLink    = errors.New("shader link failed")
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	Name           string
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
	uniforms       *UniformCache
}

func NewShader(vertex, fragment string) *Shader {
	return &Shader{
		vertexSource:   vertex,
		fragmentSource: fragment,
	}
}

// PhongShader returns the built-in shader for the untextured or the
// textured vertex layout.
func PhongShader(textured bool) *Shader {
	if textured {
		s := NewShader(texturedVertexSource, texturedFragmentSource)
		s.Name = "phong_textured"
		return s
	}
	s := NewShader(vertexShaderSource, fragmentShaderSource)
	s.Name = "phong"
	return s
}

// Compile compiles and links both stages. Calling it again on a compiled
// shader does nothing.
func (shader *Shader) Compile() error {
	if shader.isCompiled {
		return nil
	}
	vertex, err := genShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return fmt.Errorf("%s vertex: %w", shader.Name, err)
	}
	fragment, err := genShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return fmt.Errorf("%s fragment: %w", shader.Name, err)
	}
	program, err := genShaderProgram(vertex, fragment)
	if err != nil {
		return fmt.Errorf("%s: %w", shader.Name, err)
	}

	shader.program = program
	shader.uniforms = NewUniformCache(program)
	shader.isCompiled = true
	logger.Log.Debug("Shader compiled", zap.String("shader", shader.Name), zap.Uint32("program", program))
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) Program() uint32 {
	return shader.program
}

func (shader *Shader) IsCompiled() bool {
	return shader.isCompiled
}

// Uniforms returns the location cache of the linked program.
func (shader *Shader) Uniforms() *UniformCache {
	return shader.uniforms
}

// AttribLocation returns the location of a vertex attribute or -1.
func (shader *Shader) AttribLocation(name string) int32 {
	return gl.GetAttribLocation(shader.program, gl.Str(name+"\x00"))
}

func (shader *Shader) Delete() {
	if !shader.isCompiled {
		return
	}
	gl.DeleteProgram(shader.program)
	shader.program = 0
	shader.uniforms = nil
	shader.isCompiled = false
}

func genShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.Uint32("shaderType", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("%w: %s", ErrShaderCompile, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func genShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("%w: %s", ErrShaderLink, strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

var vertexShaderSource = `#version 330 core

in vec3 aPosition;
in vec3 aNormal;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 viewProjection;

out vec3 FragPos;
out vec3 Normal;

void main() {
    FragPos = vec3(model * vec4(aPosition, 1.0));
    Normal = normalMatrix * aNormal;
    gl_Position = viewProjection * vec4(FragPos, 1.0);
}
`

// phongLighting is shared by both fragment shaders.
const phongLighting = `
uniform struct Light {
    vec3 position;
    vec3 color;
    float intensity;
    float ambientStrength;
} light;
uniform vec3 viewPos;
uniform vec3 ambientColor;
uniform vec3 diffuseColor;
uniform vec3 specularColor;
uniform vec3 emissiveColor;
uniform float shininess;
uniform float alpha;

vec3 phong(vec3 norm, vec3 kd, vec3 ks) {
    vec3 ambient = light.ambientStrength * light.color * ambientColor * kd;

    vec3 lightDir = normalize(light.position - FragPos);
    float diff = max(dot(norm, lightDir), 0.0);
    vec3 diffuse = diff * light.color * kd;

    vec3 viewDir = normalize(viewPos - FragPos);
    vec3 reflectDir = reflect(-lightDir, norm);
    float spec = diff > 0.0 ? pow(max(dot(viewDir, reflectDir), 0.0), max(shininess, 1.0)) : 0.0;
    vec3 specular = spec * light.color * ks;

    return (ambient + diffuse + specular) * light.intensity + emissiveColor;
}
`

var fragmentShaderSource = `#version 330 core

in vec3 FragPos;
in vec3 Normal;

out vec4 FragColor;
` + phongLighting + `
void main() {
    vec3 result = phong(normalize(Normal), diffuseColor, specularColor);
    FragColor = vec4(result, alpha);
}
`

var texturedVertexSource = `#version 330 core

in vec3 aPosition;
in vec3 aNormal;
in vec3 aTangent;
in vec2 aTexCoord;

uniform mat4 model;
uniform mat3 normalMatrix;
uniform mat4 viewProjection;

out vec3 FragPos;
out vec2 TexCoord;
out mat3 TBN;

void main() {
    FragPos = vec3(model * vec4(aPosition, 1.0));
    TexCoord = aTexCoord;

    vec3 N = normalize(normalMatrix * aNormal);
    vec3 T = normalize(normalMatrix * aTangent);
    T = normalize(T - dot(T, N) * N);
    TBN = mat3(T, cross(N, T), N);

    gl_Position = viewProjection * vec4(FragPos, 1.0);
}
`

// Each map has its own -s/-o transform packed as (scale.xy, offset.xy).
var texturedFragmentSource = `#version 330 core

in vec3 FragPos;
in vec2 TexCoord;
in mat3 TBN;

uniform sampler2D diffuseMap;
uniform sampler2D specularMap;
uniform sampler2D normalMap;
uniform vec4 diffuseUV;
uniform vec4 specularUV;
uniform vec4 normalUV;
uniform float bumpScale;

out vec4 FragColor;
` + phongLighting + `
vec2 mapUV(vec4 t) {
    return TexCoord * t.xy + t.zw;
}

void main() {
    vec3 n = texture(normalMap, mapUV(normalUV)).rgb * 2.0 - 1.0;
    n.xy *= bumpScale;
    vec3 norm = normalize(TBN * n);

    vec4 base = texture(diffuseMap, mapUV(diffuseUV));
    vec3 kd = diffuseColor * base.rgb;
    vec3 ks = specularColor * texture(specularMap, mapUV(specularUV)).rgb;

    FragColor = vec4(phong(norm, kd, ks), alpha * base.a);
}
`
