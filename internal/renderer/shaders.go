package renderer

import (
	"fmt"
	"strings"

	"GopherView/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Maximum number of point lights the shader accepts.
const MaxPointLights = 4

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
	uniforms       *UniformCache
}

func (shader *Shader) Compile() error {
	vertexShader, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	fragmentShader, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return err
	}
	program, err := GenShaderProgram(vertexShader, fragmentShader)
	if err != nil {
		return err
	}
	shader.program = program
	shader.uniforms = NewUniformCache(program)
	shader.isCompiled = true
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.isCompiled = false
	}
}

func (shader *Shader) SetVec3(name string, value mgl32.Vec3) {
	shader.uniforms.SetVec3(name, value.X(), value.Y(), value.Z())
}

func (shader *Shader) SetVec4(name string, value [4]float32) {
	shader.uniforms.SetVec4(name, value)
}

func (shader *Shader) SetFloat(name string, value float32) {
	shader.uniforms.SetFloat(name, value)
}

func (shader *Shader) SetInt(name string, value int32) {
	shader.uniforms.SetInt(name, value)
}

func (shader *Shader) SetBool(name string, value bool) {
	if value {
		shader.uniforms.SetInt(name, 1)
	} else {
		shader.uniforms.SetInt(name, 0)
	}
}

func (shader *Shader) SetMat4(name string, value mgl32.Mat4) {
	shader.uniforms.SetMat4(name, value)
}

func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
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

		logger.Log.Error("Failed to compile shader", zap.Uint32("type", shaderType), zap.String("log", log))
		return 0, fmt.Errorf("compile shader type %d: %s", shaderType, log)
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
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
		return 0, fmt.Errorf("link program: %s", log)
	}
	return program, nil
}

var vertexShaderSource = `#version 410 core

layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec2 inTexCoord;
layout(location = 2) in vec3 inNormal;

uniform mat4 model;
uniform mat4 viewProjection;

out vec2 fragTexCoord;
out vec3 Normal;
out vec3 FragPos;

void main() {
    vec4 world = model * vec4(inPosition, 1.0);
    FragPos = world.xyz;
    Normal = mat3(transpose(inverse(model))) * inNormal;
    fragTexCoord = inTexCoord;
    gl_Position = viewProjection * world;
}
` + "\x00"

var fragmentShaderSource = `#version 410 core
#define MAX_POINT_LIGHTS 4
#define PI 3.14159265359

in vec2 fragTexCoord;
in vec3 Normal;
in vec3 FragPos;

struct DirectionalLight {
    vec3 direction;
    vec3 color;
    float intensity;
};

struct PointLight {
    vec3 position;
    vec3 color;
    float intensity;
    float range;
};

uniform DirectionalLight dirLight;
uniform PointLight pointLights[MAX_POINT_LIGHTS];
uniform int numPointLights;
uniform vec3 ambientLight;

uniform vec4 baseColor;
uniform float metallic;
uniform float roughness;
uniform float exposure;
uniform bool hasTexture;
uniform sampler2D textureSampler;

uniform bool hasEnvironment;
uniform sampler2D environmentMap;
uniform float environmentMaxLevel;
uniform vec3 irradiance;

uniform vec3 viewPos;

out vec4 FragColor;

vec2 equirectUV(vec3 dir) {
    return vec2(atan(dir.z, dir.x) / (2.0 * PI) + 0.5, acos(clamp(dir.y, -1.0, 1.0)) / PI);
}

float rangeFalloff(float dist, float range) {
    float falloff = 1.0 / max(dist * dist, 0.01);
    if (range > 0.0) {
        float ratio = dist / range;
        falloff *= pow(clamp(1.0 - ratio * ratio * ratio * ratio, 0.0, 1.0), 2.0);
    }
    return falloff;
}

vec3 shade(vec3 albedo, vec3 N, vec3 V, vec3 L, vec3 radiance) {
    vec3 H = normalize(V + L);
    float NdotL = max(dot(N, L), 0.0);
    float shininess = mix(256.0, 4.0, roughness);
    float spec = pow(max(dot(N, H), 0.0), shininess) * (1.0 - roughness * 0.7);
    vec3 specColor = mix(vec3(0.04), albedo, metallic);
    vec3 diffuse = albedo * (1.0 - metallic) / PI;
    return (diffuse + specColor * spec) * radiance * NdotL;
}

void main() {
    vec4 albedo = baseColor;
    if (hasTexture) {
        albedo *= texture(textureSampler, fragTexCoord);
    }

    vec3 N = normalize(Normal);
    vec3 V = normalize(viewPos - FragPos);

    vec3 color = ambientLight * albedo.rgb;
    color += shade(albedo.rgb, N, V, normalize(dirLight.direction), dirLight.color * dirLight.intensity) * PI;

    for (int i = 0; i < numPointLights && i < MAX_POINT_LIGHTS; i++) {
        vec3 toLight = pointLights[i].position - FragPos;
        float dist = length(toLight);
        vec3 radiance = pointLights[i].color * pointLights[i].intensity * rangeFalloff(dist, pointLights[i].range);
        color += shade(albedo.rgb, N, V, toLight / max(dist, 1e-4), radiance) * PI;
    }

    if (hasEnvironment) {
        vec3 R = reflect(-V, N);
        vec3 reflected = textureLod(environmentMap, equirectUV(R), roughness * environmentMaxLevel).rgb;
        vec3 F0 = mix(vec3(0.04), albedo.rgb, metallic);
        color += reflected * F0 * (1.0 - roughness * 0.5);
        color += irradiance * albedo.rgb * (1.0 - metallic) * 0.3;
    }

    color = vec3(1.0) - exp(-color * exposure);
    color = pow(color, vec3(1.0 / 2.2));
    FragColor = vec4(color, albedo.a);
}
` + "\x00"

func InitShader() Shader {
	return Shader{
		vertexSource:   vertexShaderSource,
		fragmentSource: fragmentShaderSource,
	}
}
