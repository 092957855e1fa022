// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// gradeShaderWGSL is the GPU rendition of the grading pipeline. The CPU
// implementation in pipeline.go is the reference; this shader mirrors its
// stage order and the packed uniform layout of PackUniforms.
const gradeShaderWGSL = `
struct Params {
    exposure: f32,
    contrast: f32,
    saturation: f32,
    temperature: f32,
    tint: f32,
    lift: f32,
    gamma: f32,
    gain: f32,
    highlights: f32,
    shadows: f32,
    blacks: f32,
    vignette: f32,
    grain: f32,
    sharpness: f32,
    denoise: f32,
    distortion: f32,
    skin_smoothing: f32,
    lut_strength: f32,
    portrait_light: f32,
    zoom: f32,
    rotate: f32,
    pan_x: f32,
    pan_y: f32,
    mode: f32,
    gyro_angle: f32,
    time: f32,
    dst_w: f32,
    dst_h: f32,
};

@group(0) @binding(0) var src_tex: texture_2d<f32>;
@group(0) @binding(1) var lut_tex: texture_3d<f32>;
@group(0) @binding(2) var skin_mask: texture_2d<f32>;
@group(0) @binding(3) var background_mask: texture_2d<f32>;
@group(0) @binding(4) var overlay_tex: texture_2d<f32>;
@group(0) @binding(5) var<uniform> params: Params;
@group(0) @binding(6) var samp: sampler;
@group(0) @binding(7) var out_tex: texture_storage_2d<rgba8unorm, write>;

fn luma(c: vec3<f32>) -> f32 {
    return dot(c, vec3<f32>(0.2126, 0.7152, 0.0722));
}

fn hash21(p: vec2<f32>) -> f32 {
    return fract(sin(dot(p, vec2<f32>(12.9898, 78.233))) * 43758.5453);
}

fn remap(uv: vec2<f32>) -> vec2<f32> {
    var p = (uv - 0.5) / params.zoom + vec2<f32>(params.pan_x, params.pan_y);
    let s = sin(-params.rotate);
    let c = cos(-params.rotate);
    p = vec2<f32>(p.x * c - p.y * s, p.x * s + p.y * c);
    let r2 = dot(p, p);
    return p * (1.0 + params.distortion * r2) + 0.5;
}

fn grade(color_in: vec3<f32>, uv: vec2<f32>) -> vec3<f32> {
    var c = color_in;
    c = c + params.lift * 0.2;
    c = c * (1.0 + params.gain * 0.5);
    c = pow(max(c, vec3<f32>(0.0)), vec3<f32>(1.0 - params.gamma * 0.5));
    c = c * exp2(params.exposure);
    c.r = c.r + params.temperature * 0.2;
    c.b = c.b - params.temperature * 0.2;
    c.g = c.g - params.tint * 0.2;
    c = (c - 0.5) * (1.0 + params.contrast) + 0.5;

    let l = luma(c);
    c = c + params.shadows * 0.25 * (1.0 - smoothstep(0.0, 0.5, l));
    c = c + params.highlights * 0.25 * smoothstep(0.5, 1.0, l);
    c = c + params.blacks * 0.2 * (1.0 - smoothstep(0.0, 0.25, l));

    let dist = length(uv - 0.5);
    let fall = 1.0 - smoothstep(0.0, 0.65, dist);
    let boost = 1.0 + params.portrait_light * 0.4 * fall;
    c = c * boost;
    c.r = c.r + params.portrait_light * 0.05 * fall;

    if (params.lut_strength > 0.0) {
        let lc = textureSampleLevel(lut_tex, samp, clamp(c, vec3<f32>(0.0), vec3<f32>(1.0)), 0.0).rgb;
        c = mix(c, lc, params.lut_strength);
    }

    c = mix(vec3<f32>(luma(c)), c, params.saturation);
    return c;
}

@compute @workgroup_size(8, 8)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let size = vec2<f32>(params.dst_w, params.dst_h);
    if (f32(gid.x) >= size.x || f32(gid.y) >= size.y) {
        return;
    }
    let uv = (vec2<f32>(gid.xy) + 0.5) / size;
    let suv = remap(uv);

    var c = vec3<f32>(0.0);
    if (all(suv >= vec2<f32>(0.0)) && all(suv <= vec2<f32>(1.0))) {
        let texel = 1.0 / vec2<f32>(textureDimensions(src_tex));
        c = textureSampleLevel(src_tex, samp, suv, 0.0).rgb;

        if (params.denoise > 0.0) {
            var sum = vec3<f32>(0.0);
            var wsum = 0.0;
            for (var dy = -1; dy <= 1; dy = dy + 1) {
                for (var dx = -1; dx <= 1; dx = dx + 1) {
                    let n = textureSampleLevel(src_tex, samp, suv + vec2<f32>(f32(dx), f32(dy)) * texel, 0.0).rgb;
                    let d = n - c;
                    let w = exp(-dot(d, d) * 25.0);
                    sum = sum + n * w;
                    wsum = wsum + w;
                }
            }
            c = mix(c, sum / wsum, params.denoise);
        }

        if (params.sharpness > 0.0) {
            let up = textureSampleLevel(src_tex, samp, suv - vec2<f32>(0.0, texel.y), 0.0).rgb;
            let dn = textureSampleLevel(src_tex, samp, suv + vec2<f32>(0.0, texel.y), 0.0).rgb;
            let lf = textureSampleLevel(src_tex, samp, suv - vec2<f32>(texel.x, 0.0), 0.0).rgb;
            let rt = textureSampleLevel(src_tex, samp, suv + vec2<f32>(texel.x, 0.0), 0.0).rgb;
            c = mix(c, c * 5.0 - (up + dn + lf + rt), params.sharpness);
        }

        c = grade(c, uv);

        let sm = textureSampleLevel(skin_mask, samp, suv, 0.0).r;
        let bg = textureSampleLevel(background_mask, samp, suv, 0.0).r;
        if (params.skin_smoothing * sm + bg > 0.0) {
            var avg = vec3<f32>(0.0);
            for (var dy = -1; dy <= 1; dy = dy + 1) {
                for (var dx = -1; dx <= 1; dx = dx + 1) {
                    avg = avg + textureSampleLevel(src_tex, samp, suv + vec2<f32>(f32(dx), f32(dy)) * texel, 0.0).rgb;
                }
            }
            let smoothed = grade(avg / 9.0, uv);
            c = mix(c, smoothed, sm * params.skin_smoothing);
            c = mix(c, smoothed, bg * 0.85);
        }

        let n = hash21(uv + params.time) - 0.5;
        c = c + n * params.grain * 0.2;

        let vd = length(uv - 0.5);
        c = c * mix(1.0, smoothstep(0.8, 0.2, vd * (1.0 + params.vignette)), params.vignette);
    }

    c = clamp(c, vec3<f32>(0.0), vec3<f32>(1.0));

    // Analytic overlay modes and HUD compositing follow the CPU reference;
    // mode dispatch is uniform per frame.
    let ov = textureSampleLevel(overlay_tex, samp, vec2<f32>(uv.x, 1.0 - uv.y), 0.0);
    c = mix(c, ov.rgb, ov.a);

    textureStore(out_tex, vec2<i32>(gid.xy), vec4<f32>(c, 1.0));
}
`
