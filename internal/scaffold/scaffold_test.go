package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testlens/internal/analysis"
	"testlens/internal/world"
)

func workspaceWithProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "Fujiq.Core")
	require.NoError(t, os.MkdirAll(dir, 0755))
	csproj := `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup>
</Project>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Fujiq.Core.csproj"), []byte(csproj), 0644))
	return root
}

func reportWithUntested() *analysis.Report {
	return &analysis.Report{
		Stack: analysis.StackInfo{TestFramework: "xunit"},
		Classes: []analysis.ClassInfo{
			{
				Name:      "UserService",
				Ref:       "cs:Fujiq.Core/UserService.cs:UserService",
				Namespace: "Fujiq.Core",
				Project:   "Fujiq.Core",
				CtorDeps: []world.Parameter{
					{Type: "IUserRepository", Name: "repository"},
					{Type: "IClock", Name: "clock"},
				},
				PublicAPI:     2,
				PublicMethods: []string{"GetUser", "DeleteUser"},
				Score:         84,
			},
			{
				Name:      "SlugHelper",
				Ref:       "cs:Fujiq.Core/SlugHelper.cs:SlugHelper",
				Namespace: "Fujiq.Core",
				Project:   "Fujiq.Core",
				PublicAPI: 1,
				PublicMethods: []string{
					"Slugify",
				},
				Score: 100,
			},
		},
	}
}

func TestGenerateCreatesTestProject(t *testing.T) {
	root := workspaceWithProject(t)

	result, err := NewScaffolder(reportWithUntested()).Generate(root, "")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "Fujiq.Core.Tests"), result.ProjectDir)
	assert.Empty(t, result.Skipped)

	csproj, err := os.ReadFile(filepath.Join(result.ProjectDir, "Fujiq.Core.Tests.csproj"))
	require.NoError(t, err)
	assert.Contains(t, string(csproj), "<TargetFramework>net8.0</TargetFramework>")
	assert.Contains(t, string(csproj), `PackageReference Include="xunit"`)
	assert.Contains(t, string(csproj), `PackageReference Include="Moq"`)
	assert.Contains(t, string(csproj), `PackageReference Include="coverlet.collector"`)
	assert.Contains(t, string(csproj), "Fujiq.Core/Fujiq.Core.csproj")

	usings, err := os.ReadFile(filepath.Join(result.ProjectDir, "GlobalUsings.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(usings), "global using Xunit;")
	assert.Contains(t, string(usings), "global using Moq;")
}

func TestGenerateTestClassSkeletons(t *testing.T) {
	root := workspaceWithProject(t)

	result, err := NewScaffolder(reportWithUntested()).Generate(root, "Fujiq.Core")
	require.NoError(t, err)

	skeleton, err := os.ReadFile(filepath.Join(result.ProjectDir, "UserServiceTests.cs"))
	require.NoError(t, err)
	text := string(skeleton)

	assert.Contains(t, text, "namespace Fujiq.Core.Tests;")
	assert.Contains(t, text, "public class UserServiceTests")
	assert.Contains(t, text, "Mock<IUserRepository> _repositoryMock")
	assert.Contains(t, text, "Mock<IClock> _clockMock")
	assert.Contains(t, text, "new(_repositoryMock.Object, _clockMock.Object)")
	assert.Contains(t, text, "GetUser_WhenCalled_BehavesAsExpected")
	assert.Contains(t, text, "DeleteUser_WhenCalled_BehavesAsExpected")

	plain, err := os.ReadFile(filepath.Join(result.ProjectDir, "SlugHelperTests.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(plain), "var sut = new SlugHelper();")
	assert.Contains(t, string(plain), "Slugify_WhenCalled_BehavesAsExpected")
}

func TestGenerateNeverOverwrites(t *testing.T) {
	root := workspaceWithProject(t)
	scaffolder := NewScaffolder(reportWithUntested())

	first, err := scaffolder.Generate(root, "")
	require.NoError(t, err)
	require.NotEmpty(t, first.Created)

	// Mark one generated file so a second run would be destructive if it
	// rewrote anything.
	marked := filepath.Join(first.ProjectDir, "UserServiceTests.cs")
	require.NoError(t, os.WriteFile(marked, []byte("// edited by hand\n"), 0644))

	second, err := scaffolder.Generate(root, "")
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, len(first.Created))

	content, err := os.ReadFile(marked)
	require.NoError(t, err)
	assert.Equal(t, "// edited by hand\n", string(content))
}

func TestGenerateUnknownProject(t *testing.T) {
	root := workspaceWithProject(t)

	_, err := NewScaffolder(reportWithUntested()).Generate(root, "Nope")
	assert.Error(t, err)
}

func TestGenerateNUnitStack(t *testing.T) {
	root := workspaceWithProject(t)

	report := reportWithUntested()
	report.Stack = analysis.StackInfo{TestFramework: "nunit", HasNSubstitute: true}

	result, err := NewScaffolder(report).Generate(root, "")
	require.NoError(t, err)

	csproj, err := os.ReadFile(filepath.Join(result.ProjectDir, "Fujiq.Core.Tests.csproj"))
	require.NoError(t, err)
	assert.Contains(t, string(csproj), `PackageReference Include="NUnit"`)
	assert.Contains(t, string(csproj), `PackageReference Include="NSubstitute"`)
	assert.NotContains(t, string(csproj), `PackageReference Include="Moq"`)

	// Usings and skeletons must match the csproj's framework or the
	// generated project does not compile.
	usings, err := os.ReadFile(filepath.Join(result.ProjectDir, "GlobalUsings.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(usings), "global using NUnit.Framework;")
	assert.NotContains(t, string(usings), "Xunit")

	skeleton, err := os.ReadFile(filepath.Join(result.ProjectDir, "SlugHelperTests.cs"))
	require.NoError(t, err)
	text := string(skeleton)
	assert.Contains(t, text, "[TestFixture]")
	assert.Contains(t, text, "[Test]")
	assert.Contains(t, text, "Assert.That(sut, Is.Not.Null);")
	assert.NotContains(t, text, "[Fact]")
}

func TestGenerateMSTestStack(t *testing.T) {
	root := workspaceWithProject(t)

	report := reportWithUntested()
	report.Stack = analysis.StackInfo{TestFramework: "mstest"}

	result, err := NewScaffolder(report).Generate(root, "")
	require.NoError(t, err)

	usings, err := os.ReadFile(filepath.Join(result.ProjectDir, "GlobalUsings.cs"))
	require.NoError(t, err)
	assert.Contains(t, string(usings), "global using Microsoft.VisualStudio.TestTools.UnitTesting;")

	skeleton, err := os.ReadFile(filepath.Join(result.ProjectDir, "UserServiceTests.cs"))
	require.NoError(t, err)
	text := string(skeleton)
	assert.Contains(t, text, "[TestClass]")
	assert.Contains(t, text, "[TestMethod]")
	assert.Contains(t, text, "Assert.IsNotNull(sut);")
	assert.NotContains(t, text, "[Fact]")
}

func TestGenerateRootLevelProjectStaysInWorkspace(t *testing.T) {
	root := t.TempDir()
	csproj := `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup>
</Project>`
	require.NoError(t, os.WriteFile(filepath.Join(root, "Acme.csproj"), []byte(csproj), 0644))

	result, err := NewScaffolder(reportWithUntested()).Generate(root, "")
	require.NoError(t, err)

	// A csproj at the workspace root must not push the test project into
	// the root's parent directory.
	assert.Equal(t, filepath.Join(root, "Acme.Tests"), result.ProjectDir)
	_, err = os.Stat(filepath.Join(root, "Acme.Tests", "Acme.Tests.csproj"))
	assert.NoError(t, err)
}

func TestFieldName(t *testing.T) {
	assert.Equal(t, "repository", fieldName(world.Parameter{Type: "IUserRepository", Name: "repository"}))
	assert.Equal(t, "clock", fieldName(world.Parameter{Type: "IClock", Name: "clock"}))
	assert.Equal(t, "userRepository", fieldName(world.Parameter{Type: "IUserRepository"}))
	assert.Equal(t, "dep", fieldName(world.Parameter{}))
}
