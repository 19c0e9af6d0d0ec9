// Package loaders provides asset.Loader implementations for textures,
// materials and shaders, one per pipeline entry mode.
//
//   - TextureLoader (touch): reads the image header, checks it against the
//     world's TextureSettings, then decodes the pixels.
//   - MaterialLoader (prepare): snapshots the world's MaterialDefaults, then
//     decodes a JSON material file.
//   - ShaderLoader (load only): reads shader source; the stage comes from the
//     file extension.
//
// All loaders read from a source.Source. Files ending in .lz4 or .zst are
// unpacked with the codec package first.
package loaders
